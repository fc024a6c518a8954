package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/jrsteele09/go-oauth-client/oauth2"
	xoauth2 "golang.org/x/oauth2"
)

// stateBytes is the number of random bytes for the OAuth state parameter.
// 32 bytes is 256 bits of entropy and encodes to 43 base64url characters.
const stateBytes = 32

// SessionSecrets are the per-attempt values that tie a redirect back to the
// authorization request that caused it. They are generated once per attempt,
// held only by the flow driving that attempt and never reused.
type SessionSecrets struct {
	// State is echoed back on the redirect and must match exactly.
	State string

	// CodeVerifier is kept secret and only sent to the token endpoint.
	// Empty when PKCE is disabled.
	CodeVerifier string

	// CodeChallenge is the S256 hash of CodeVerifier sent in the authorization request.
	// Empty when PKCE is disabled.
	CodeChallenge string
}

// PKCEEnabled reports whether the secrets carry a verifier/challenge pair.
func (s *SessionSecrets) PKCEEnabled() bool {
	return s.CodeVerifier != ""
}

// ChallengeMethod returns the PKCE method, or "" without PKCE.
func (s *SessionSecrets) ChallengeMethod() oauth2.CodeMethodType {
	if !s.PKCEEnabled() {
		return ""
	}
	return oauth2.CodeMethodTypeS256
}

// NewSessionSecrets generates a fresh state and, when pkce is set, a verifier
// and its S256 challenge.
func NewSessionSecrets(pkce bool) (*SessionSecrets, error) {
	state, err := GenerateState()
	if err != nil {
		return nil, err
	}

	secrets := &SessionSecrets{State: state}
	if pkce {
		secrets.CodeVerifier = GenerateCodeVerifier()
		secrets.CodeChallenge = DeriveCodeChallenge(secrets.CodeVerifier)
	}
	return secrets, nil
}

// GenerateState returns 32 bytes from crypto/rand, base64url-encoded without padding.
func GenerateState() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateCodeVerifier returns a PKCE code verifier: 32 random bytes,
// base64url-encoded without padding (43 characters).
func GenerateCodeVerifier() string {
	return xoauth2.GenerateVerifier()
}

// DeriveCodeChallenge returns BASE64URL(SHA256(verifier)) without padding.
// Only the S256 method is supported.
func DeriveCodeChallenge(verifier string) string {
	return xoauth2.S256ChallengeFromVerifier(verifier)
}
