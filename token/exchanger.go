package token

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-oauth-client/oauth2"
	"github.com/jrsteele09/go-oauth-client/oauthmodel"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "github.com/jrsteele09/go-oauth-client/token"
	spanName   = "oauth.token_exchange"

	// ErrorCodeInvalidTokenResponse is used when a 2xx body carries no access_token.
	ErrorCodeInvalidTokenResponse = "invalid_token_response"
	// ErrorCodeInvalidResponse is used when an error body cannot be decoded.
	ErrorCodeInvalidResponse = "invalid_response"

	DefaultHTTPTimeout = 30 * time.Second

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes    = 1 << 20
	maxSnippetBytes = 256
)

// Transport sends one HTTP request. *http.Client satisfies it.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

type ExchangerOption func(*Exchanger)

func WithTransport(t Transport) ExchangerOption {
	return func(e *Exchanger) {
		e.transport = t
	}
}

func WithCodec(c Codec) ExchangerOption {
	return func(e *Exchanger) {
		e.codec = c
	}
}

func WithLogger(logger zerolog.Logger) ExchangerOption {
	return func(e *Exchanger) {
		e.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) ExchangerOption {
	return func(e *Exchanger) {
		e.tracer = tracer
	}
}

// Exchanger posts form bodies to a token endpoint and decodes the result.
// It never retries.
type Exchanger struct {
	transport Transport
	codec     Codec
	logger    zerolog.Logger
	tracer    trace.Tracer
}

func NewExchanger(opts ...ExchangerOption) *Exchanger {
	e := &Exchanger{
		transport: &http.Client{Timeout: DefaultHTTPTimeout},
		codec:     NewJSONCodec(),
		logger:    log.Logger,
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Exchange POSTs body to endpoint with header and returns the decoded token.
//
// Failures are reported as:
//   - *oauthmodel.ConnectionError when the request cannot be built or sent, or
//     a success body cannot be read or decoded
//   - *oauthmodel.ProtocolError when the server answered with an OAuth error,
//     an undecodable error body, or a success body without an access token
func (e *Exchanger) Exchange(ctx context.Context, endpoint string, header http.Header, body string) (*oauth2.TokenResponse, error) {
	ctx, span := e.tracer.Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	tokenResponse, status, err := e.exchange(ctx, endpoint, header, body)
	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token exchange failed")
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return tokenResponse, nil
}

func (e *Exchanger) exchange(ctx context.Context, endpoint string, header http.Header, body string) (*oauth2.TokenResponse, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return nil, 0, &oauthmodel.ConnectionError{Op: "build request", Err: err}
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	e.logger.Debug().Str("endpoint", redactEndpoint(req)).Msg("Requesting token")

	resp, err := e.transport.Do(req)
	if err != nil {
		return nil, 0, &oauthmodel.ConnectionError{Op: "send request", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, &oauthmodel.ConnectionError{Op: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, e.protocolError(resp.StatusCode, raw)
	}

	var tokenResponse oauth2.TokenResponse
	if err := e.codec.Decode(bytes.NewReader(raw), &tokenResponse); err != nil {
		return nil, resp.StatusCode, &oauthmodel.ConnectionError{Op: "decode token response", Err: err}
	}
	if tokenResponse.GetAccessToken() == "" {
		return nil, resp.StatusCode, &oauthmodel.ProtocolError{
			Code:        ErrorCodeInvalidTokenResponse,
			Description: "token response did not contain an access_token",
			StatusCode:  resp.StatusCode,
		}
	}

	e.logger.Debug().
		Int("status", resp.StatusCode).
		Object("token", &tokenResponse).
		Msg("Token received")
	return &tokenResponse, resp.StatusCode, nil
}

func (e *Exchanger) protocolError(status int, raw []byte) error {
	var errorResponse oauth2.ErrorResponse
	if err := e.codec.Decode(bytes.NewReader(raw), &errorResponse); err != nil || errorResponse.Error == "" {
		e.logger.Warn().Int("status", status).Msg("Token endpoint returned an unparseable error body")
		return &oauthmodel.ProtocolError{
			Code:        ErrorCodeInvalidResponse,
			Description: fmt.Sprintf("%d: %s", status, snippet(raw)),
			StatusCode:  status,
		}
	}

	e.logger.Warn().
		Int("status", status).
		Str("error", errorResponse.Error).
		Str("error_description", errorResponse.ErrorDescription).
		Msg("Token endpoint returned an error")
	return &oauthmodel.ProtocolError{
		Code:        errorResponse.Error,
		Description: errorResponse.ErrorDescription,
		StatusCode:  status,
	}
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > maxSnippetBytes {
		s = s[:maxSnippetBytes] + "..."
	}
	return s
}

// redactEndpoint drops the query so credentials passed there are not logged.
func redactEndpoint(req *http.Request) string {
	u := *req.URL
	u.RawQuery = ""
	u.User = nil
	return u.String()
}
