package oauth2

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-oauth-client/internal/utils"
	"github.com/rs/zerolog"
	xoauth2 "golang.org/x/oauth2"
)

const redacted = "*******************"

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// TokenResponse represents the response from an OAuth2 token request.
// This is the standard OAuth2 token endpoint response format as defined in RFC 6749,
// plus the provider metadata some servers (Salesforce) return alongside it.
// Unknown fields in the response body are ignored.
type TokenResponse struct {
	// AccessToken is the token used to access protected resources.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	// Security: Never log this value, String() and the zerolog marshaller redact it.
	AccessToken *string `json:"access_token,omitempty"`

	// IdToken is the OpenID Connect ID token.
	// Only present: When "openid" scope was requested
	IdToken *string `json:"id_token,omitempty"`

	// TokenType indicates how to use the access token.
	// Example: "bearer"
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the lifetime in seconds of the access token.
	// Example: 900 (for 15 minutes)
	ExpiresIn int `json:"expires_in,omitempty"`

	// RefreshToken is an opaque token used to obtain new access tokens.
	// Usage: Send to the token endpoint with grant_type=refresh_token
	RefreshToken *string `json:"refresh_token,omitempty"`

	// Scope indicates the access token's granted permissions.
	// Example: "openid profile email api.read"
	Scope string `json:"scope,omitempty"`

	// InstanceURL is the API base URL for the authorized org (Salesforce).
	InstanceURL string `json:"instance_url,omitempty"`

	// ID is the identity URL of the authorized user (Salesforce).
	ID string `json:"id,omitempty"`

	// IssuedAt is the issue time in epoch milliseconds, as a string (Salesforce).
	IssuedAt string `json:"issued_at,omitempty"`

	// Signature is the base64 HMAC-SHA256 over id + issued_at (Salesforce).
	Signature *string `json:"signature,omitempty"`
}

// GetAccessToken returns the access token, or "" when absent.
func (t *TokenResponse) GetAccessToken() string {
	return utils.Value(t.AccessToken)
}

// GetRefreshToken returns the refresh token, or "" when absent.
func (t *TokenResponse) GetRefreshToken() string {
	return utils.Value(t.RefreshToken)
}

// GetIdToken returns the ID token, or "" when absent.
func (t *TokenResponse) GetIdToken() string {
	return utils.Value(t.IdToken)
}

// String renders the response with every credential field masked.
func (t *TokenResponse) String() string {
	if t == nil {
		return "TokenResponse<nil>"
	}
	var b strings.Builder
	b.WriteString("TokenResponse{")
	fmt.Fprintf(&b, "accessToken='%s'", mask(t.AccessToken))
	fmt.Fprintf(&b, ", refreshToken='%s'", mask(t.RefreshToken))
	fmt.Fprintf(&b, ", idToken='%s'", mask(t.IdToken))
	fmt.Fprintf(&b, ", tokenType='%s'", t.TokenType)
	fmt.Fprintf(&b, ", expiresIn=%d", t.ExpiresIn)
	fmt.Fprintf(&b, ", scope='%s'", t.Scope)
	fmt.Fprintf(&b, ", instanceUrl='%s'", t.InstanceURL)
	fmt.Fprintf(&b, ", id='%s'", t.ID)
	fmt.Fprintf(&b, ", issuedAt='%s'", t.IssuedAt)
	fmt.Fprintf(&b, ", signature='%s'", mask(t.Signature))
	b.WriteString("}")
	return b.String()
}

// GoString keeps %#v from bypassing redaction.
func (t *TokenResponse) GoString() string {
	return t.String()
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler with credentials masked.
func (t *TokenResponse) MarshalZerologObject(e *zerolog.Event) {
	if t == nil {
		return
	}
	e.Str("access_token", mask(t.AccessToken)).
		Str("refresh_token", mask(t.RefreshToken)).
		Str("id_token", mask(t.IdToken)).
		Str("token_type", t.TokenType).
		Int("expires_in", t.ExpiresIn).
		Str("scope", t.Scope).
		Str("instance_url", t.InstanceURL).
		Str("signature", mask(t.Signature))
}

// ToOAuth2Token converts the response into an x/oauth2 token so it can back an
// oauth2.TokenSource or an authenticated http.Client.
func (t *TokenResponse) ToOAuth2Token() *xoauth2.Token {
	token := &xoauth2.Token{
		AccessToken:  t.GetAccessToken(),
		TokenType:    t.TokenType,
		RefreshToken: t.GetRefreshToken(),
	}
	if t.ExpiresIn > 0 {
		token.Expiry = NowTimeFunc().Add(time.Duration(t.ExpiresIn) * time.Second)
	}

	extra := map[string]any{}
	if t.IdToken != nil {
		extra["id_token"] = *t.IdToken
	}
	if t.Scope != "" {
		extra["scope"] = t.Scope
	}
	if t.InstanceURL != "" {
		extra["instance_url"] = t.InstanceURL
	}
	if t.ID != "" {
		extra["id"] = t.ID
	}
	if len(extra) > 0 {
		token = token.WithExtra(extra)
	}
	return token
}

// ErrNotJWT is returned by AccessTokenClaims when the access token is opaque.
var ErrNotJWT = errors.New("access token is not a JWT")

// AccessTokenClaims decodes the claims of a JWT access token WITHOUT verifying
// its signature. The result is informational only (subject, expiry, audience)
// and must not be used for authorization decisions.
func (t *TokenResponse) AccessTokenClaims() (jwtlib.MapClaims, error) {
	raw := t.GetAccessToken()
	if strings.Count(raw, ".") != 2 {
		return nil, ErrNotJWT
	}

	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotJWT, err)
	}
	return claims, nil
}

func mask(v *string) string {
	if v == nil {
		return "<nil>"
	}
	return redacted
}
