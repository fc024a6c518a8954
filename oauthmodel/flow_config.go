package oauthmodel

import "strings"

// FlowConfig holds the parameters of one token acquisition attempt.
// It is supplied by the caller and treated as immutable by every flow.
// Each grant type requires a different subset of the fields.
type FlowConfig struct {
	// ClientID identifies the OAuth2 client making the request.
	// Required: Yes (for all grant types)
	// Example: "web-app-client"
	ClientID string `yaml:"client_id" json:"client_id"`

	// ClientSecret is the secret credential for confidential clients.
	// Required: client_credentials only. Sent in the body for the other grants when set.
	// Security: Never log or expose this value
	ClientSecret string `yaml:"client_secret" json:"client_secret,omitempty"`

	// RedirectURI is the loopback address the browser is sent back to.
	// Required: authorization_code only
	// Example: "http://localhost:1717/OauthRedirect"
	// A port of 0 binds an ephemeral port, the resolved URI is used for the attempt.
	RedirectURI string `yaml:"redirect_uri" json:"redirect_uri,omitempty"`

	// AuthorizationEndpoint is where the user's browser is sent to grant access.
	// Required: authorization_code only
	AuthorizationEndpoint string `yaml:"authorization_endpoint" json:"authorization_endpoint,omitempty"`

	// TokenEndpoint receives the token request.
	// Required: Yes (for all grant types)
	TokenEndpoint string `yaml:"token_endpoint" json:"token_endpoint,omitempty"`

	// RefreshToken is exchanged for a new access token.
	// Required: refresh_token only
	RefreshToken string `yaml:"refresh_token" json:"refresh_token,omitempty"`

	// PKCEEnabled adds an S256 code challenge to the authorization request and
	// the matching code_verifier to the token request.
	PKCEEnabled bool `yaml:"pkce_enabled" json:"pkce_enabled"`

	// Scope is an optional space-separated list of requested scopes.
	Scope string `yaml:"scope" json:"scope,omitempty"`

	// Issuer optionally names an OpenID provider whose discovery document
	// supplies any blank endpoint.
	Issuer string `yaml:"issuer" json:"issuer,omitempty"`
}

// AuthorizationGrant carries the per-attempt values the authorization code
// grant adds to its token request. The other grants ignore it.
type AuthorizationGrant struct {
	// Code is the authorization code returned on the redirect.
	Code string
	// RedirectURI is the exact redirect URI used in the authorization request.
	RedirectURI string
	// CodeVerifier is the PKCE verifier, empty when PKCE is disabled.
	CodeVerifier string
}

// IsBlank reports whether s is empty or only whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
