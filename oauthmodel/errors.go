package oauthmodel

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks a missing or blank required configuration field.
	// No network call is attempted when it is returned.
	ErrConfiguration = errors.New("invalid oauth configuration")

	// ErrAuthorization marks a failed browser authorization: state mismatch,
	// user denial, or a malformed callback.
	ErrAuthorization = errors.New("authorization failed")

	// ErrConnection marks a transport failure before a token response was read.
	ErrConnection = errors.New("token request connection failed")

	// ErrProtocol marks a structured OAuth error from the callback or token endpoint.
	ErrProtocol = errors.New("oauth protocol error")

	// ErrCallbackTimeout is returned when no redirect arrives in time.
	ErrCallbackTimeout = errors.New("timed out waiting for oauth callback")

	// ErrInvalidURI is returned when an endpoint or redirect URI cannot be used.
	ErrInvalidURI = errors.New("invalid uri")
)

// ConfigurationError lists the required fields a flow found missing or blank.
type ConfigurationError struct {
	Grant   string
	Missing []string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	msg := "invalid oauth configuration"
	if e.Grant != "" {
		msg += " for " + e.Grant
	}
	if len(e.Missing) > 0 {
		msg += ": missing required parameters (" + strings.Join(e.Missing, ", ") + ")"
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// ProtocolError is an OAuth error code and description, taken from a callback
// query string or a token endpoint error body.
type ProtocolError struct {
	Code        string
	Description string
	// StatusCode is the token endpoint HTTP status, 0 for callback errors.
	StatusCode int
}

func (e *ProtocolError) Error() string {
	var b strings.Builder
	b.WriteString("oauth error")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	b.WriteString(": ")
	b.WriteString(e.Code)
	if e.Description != "" {
		b.WriteString(" - ")
		b.WriteString(e.Description)
	}
	return b.String()
}

func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocol
}

// AuthorizationError terminates an authorization code flow whose callback
// failed. Err is usually a *ProtocolError carrying the callback error.
type AuthorizationError struct {
	Err error
}

func (e *AuthorizationError) Error() string {
	if e.Err == nil {
		return ErrAuthorization.Error()
	}
	return ErrAuthorization.Error() + ": " + e.Err.Error()
}

func (e *AuthorizationError) Unwrap() error {
	return e.Err
}

func (e *AuthorizationError) Is(target error) bool {
	return target == ErrAuthorization
}

// ConnectionError wraps a transport failure. Op names the step that failed.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("token request connection failed: %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection
}
