package oauth2

// ResponseType represents the OAuth 2.0 response type.
// Determines what is returned from the authorization endpoint.
type ResponseType string

const (
	// CodeResponseType requests an authorization code.
	// Example: /authorize?response_type=code&client_id=...
	CodeResponseType ResponseType = "code"
)

// CodeMethodType represents the PKCE (Proof Key for Code Exchange) challenge method.
// Used to prevent authorization code interception on the loopback redirect.
type CodeMethodType string

const (
	// CodeMethodTypeS256 indicates SHA-256 hashing is used for the code challenge.
	// Client sends: code_challenge = BASE64URL(SHA256(code_verifier))
	// The "plain" method is not supported by this client.
	CodeMethodTypeS256 CodeMethodType = "S256"
)

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
// Determines what credentials are required to obtain tokens.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Token request includes: code, client_id, redirect_uri, client_secret (optional), code_verifier (if PKCE)
	AuthorizationCodeGrant GrantType = "authorization_code"

	// ClientCredentialsGrant allows machine-to-machine authentication.
	// Token request includes: grant_type only, credentials travel in the Basic Authorization header.
	ClientCredentialsGrant GrantType = "client_credentials"

	// RefreshTokenGrant exchanges a refresh token for new tokens.
	// Token request includes: refresh_token, client_id, client_secret (optional)
	RefreshTokenGrant GrantType = "refresh_token"
)

// String implements fmt.Stringer.
func (g GrantType) String() string {
	return string(g)
}

// ParseGrantType maps the wire name of a grant onto a GrantType.
func ParseGrantType(s string) (GrantType, bool) {
	switch g := GrantType(s); g {
	case AuthorizationCodeGrant, ClientCredentialsGrant, RefreshTokenGrant:
		return g, true
	}
	return "", false
}
