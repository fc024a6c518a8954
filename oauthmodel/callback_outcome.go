package oauthmodel

import "fmt"

// Error codes the callback handler produces on its own, as opposed to codes
// relayed from the authorization server.
const (
	ErrorCodeInvalidState       = "invalid_state"
	ErrorCodeInvalidQueryString = "invalid_query_string"
)

// CallbackOutcome is the result of the single redirect request a callback
// listener accepts. It is either a success carrying the authorization code or
// a failure carrying an error code and description.
type CallbackOutcome struct {
	success          bool
	code             string
	state            string
	errorCode        string
	errorDescription string
}

// NewSuccessOutcome returns a successful outcome.
func NewSuccessOutcome(code, state string) CallbackOutcome {
	return CallbackOutcome{success: true, code: code, state: state}
}

// NewFailureOutcome returns a failed outcome.
func NewFailureOutcome(errorCode, errorDescription string) CallbackOutcome {
	return CallbackOutcome{errorCode: errorCode, errorDescription: errorDescription}
}

func (o CallbackOutcome) IsSuccess() bool          { return o.success }
func (o CallbackOutcome) Code() string             { return o.code }
func (o CallbackOutcome) State() string            { return o.state }
func (o CallbackOutcome) ErrorCode() string        { return o.errorCode }
func (o CallbackOutcome) ErrorDescription() string { return o.errorDescription }

// ErrorText formats a failure for display.
func (o CallbackOutcome) ErrorText() string {
	return fmt.Sprintf("error: %s, description: %s", o.errorCode, o.errorDescription)
}

// Err converts a failed outcome into an *AuthorizationError. It returns nil
// for a successful outcome.
func (o CallbackOutcome) Err() error {
	if o.success {
		return nil
	}
	return &AuthorizationError{
		Err: &ProtocolError{Code: o.errorCode, Description: o.errorDescription},
	}
}
