package auth

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-oauth-client/oauth2"
	"github.com/jrsteele09/go-oauth-client/oauthmodel"
)

// BuildAuthorizationURL composes the URL the user's browser is sent to.
// Parameters are appended in a fixed order after any query the endpoint
// already carries: response_type, client_id, redirect_uri, state, scope (when
// set) and, with PKCE, code_challenge and code_challenge_method.
// redirectURI overrides cfg.RedirectURI when the listener resolved a port.
func BuildAuthorizationURL(cfg *oauthmodel.FlowConfig, secrets *SessionSecrets, redirectURI string) (*url.URL, error) {
	endpoint, err := url.Parse(strings.TrimSpace(cfg.AuthorizationEndpoint))
	if err != nil {
		return nil, fmt.Errorf("%w: authorization endpoint: %w", oauthmodel.ErrInvalidURI, err)
	}
	if !endpoint.IsAbs() || endpoint.Host == "" {
		return nil, fmt.Errorf("%w: authorization endpoint %q is not an absolute URI", oauthmodel.ErrInvalidURI, cfg.AuthorizationEndpoint)
	}
	if redirectURI == "" {
		redirectURI = cfg.RedirectURI
	}

	q := NewForm().
		Add("response_type", string(oauth2.CodeResponseType)).
		Add("client_id", cfg.ClientID).
		Add("redirect_uri", redirectURI).
		Add("state", secrets.State)
	if !oauthmodel.IsBlank(cfg.Scope) {
		q.Add("scope", cfg.Scope)
	}
	if secrets.PKCEEnabled() {
		q.Add("code_challenge", secrets.CodeChallenge).
			Add("code_challenge_method", string(secrets.ChallengeMethod()))
	}

	if endpoint.RawQuery != "" {
		endpoint.RawQuery += "&" + q.Encode()
	} else {
		endpoint.RawQuery = q.Encode()
	}
	return endpoint, nil
}
