package oauth2

// ErrorResponse is the body an authorization server returns from the token
// endpoint on failure (RFC 6749 section 5.2).
type ErrorResponse struct {
	// Error is the machine-readable error code.
	// Example: "invalid_grant"
	Error string `json:"error"`

	// ErrorDescription is a human-readable explanation.
	// Example: "expired authorization code"
	ErrorDescription string `json:"error_description,omitempty"`

	// ErrorURI optionally links to a page describing the error.
	ErrorURI string `json:"error_uri,omitempty"`
}
