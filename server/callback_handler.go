package server

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/jrsteele09/go-oauth-client/oauthmodel"
	"github.com/rs/zerolog"
)

// completionSlot is a single-assignment, many-reader handoff. The first
// resolve stores the outcome and closes done; every later resolve is a no-op.
// Readers that observe done closed also observe the stored outcome.
type completionSlot struct {
	once    sync.Once
	done    chan struct{}
	outcome oauthmodel.CallbackOutcome
}

func newCompletionSlot() *completionSlot {
	return &completionSlot{done: make(chan struct{})}
}

// resolve stores o if the slot is still empty and reports whether it did.
func (s *completionSlot) resolve(o oauthmodel.CallbackOutcome) bool {
	won := false
	s.once.Do(func() {
		s.outcome = o
		close(s.done)
		won = true
	})
	return won
}

func (s *completionSlot) resolved() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// CallbackHandler turns one redirect request into a CallbackOutcome, writes it
// to the completion slot and answers the browser with an HTML page.
type CallbackHandler struct {
	expectedState string
	checkState    bool
	slot          *completionSlot
	pages         *callbackPages
	logger        zerolog.Logger
}

// Evaluate maps a raw query string onto an outcome:
//   - blank query: invalid_query_string
//   - state differs from the expected one: invalid_state
//   - code present: success
//   - error or error_description present: the server's error
//   - anything else: invalid_query_string
//
// When a key repeats, its first occurrence is used.
func (h *CallbackHandler) Evaluate(rawQuery string) oauthmodel.CallbackOutcome {
	if strings.TrimSpace(rawQuery) == "" {
		return oauthmodel.NewFailureOutcome(oauthmodel.ErrorCodeInvalidQueryString, "No query parameters found")
	}

	params := parseQuery(rawQuery)

	if h.checkState {
		actual, ok := params["state"]
		if !ok || subtle.ConstantTimeCompare([]byte(actual), []byte(h.expectedState)) != 1 {
			return oauthmodel.NewFailureOutcome(oauthmodel.ErrorCodeInvalidState, "State parameter mismatch")
		}
	}

	if code, ok := params["code"]; ok {
		return oauthmodel.NewSuccessOutcome(code, params["state"])
	}

	errCode, hasError := params["error"]
	description, hasDescription := params["error_description"]
	if hasError || hasDescription {
		return oauthmodel.NewFailureOutcome(errCode, description)
	}

	return oauthmodel.NewFailureOutcome(oauthmodel.ErrorCodeInvalidQueryString,
		"Could not parse request query string: "+rawQuery)
}

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	outcome := h.Evaluate(r.URL.RawQuery)

	if !h.slot.resolve(outcome) {
		h.logger.Warn().Msg("callback already processed, ignoring repeated request")
		h.respondError(w, "callback_already_processed", "This authorization response has already been received.")
		return
	}

	if outcome.IsSuccess() {
		h.logger.Info().Msg("authorization code received")
		if err := h.pages.renderSuccess(w); err != nil {
			h.logger.Err(err).Msg("Failed to render callback success page")
		}
		return
	}

	h.logger.Warn().
		Str("error", outcome.ErrorCode()).
		Str("error_description", outcome.ErrorDescription()).
		Msg("authorization callback failed")
	h.respondError(w, outcome.ErrorCode(), outcome.ErrorDescription())
}

func (h *CallbackHandler) respondError(w http.ResponseWriter, errorCode, description string) {
	if err := h.pages.renderError(w, http.StatusBadRequest, errorCode, description); err != nil {
		h.logger.Err(err).Msg("Failed to render callback error page")
	}
}

// parseQuery decodes rawQuery keeping the first value of every key. Pairs
// that fail to unescape are skipped.
func parseQuery(rawQuery string) map[string]string {
	params := make(map[string]string)
	values, _ := url.ParseQuery(rawQuery)
	for k, v := range values {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	return params
}
