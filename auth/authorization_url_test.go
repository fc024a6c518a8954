package auth_test

import (
	"testing"

	"github.com/jrsteele09/go-oauth-client/auth"
	"github.com/jrsteele09/go-oauth-client/oauthmodel"
	"github.com/stretchr/testify/require"
)

const testRedirectURI = "http://localhost:1717/OauthRedirect"

func TestBuildAuthorizationURL(t *testing.T) {
	cfg := &oauthmodel.FlowConfig{
		ClientID:              "c1",
		RedirectURI:           testRedirectURI,
		AuthorizationEndpoint: "https://idp.example.com/services/oauth2/authorize",
	}

	t.Run("without PKCE", func(t *testing.T) {
		u, err := auth.BuildAuthorizationURL(cfg, &auth.SessionSecrets{State: "S"}, "")
		require.NoError(t, err)
		require.Equal(t, "https", u.Scheme)
		require.Equal(t, "/services/oauth2/authorize", u.Path)
		require.Equal(t,
			"response_type=code&client_id=c1&redirect_uri=http%3A%2F%2Flocalhost%3A1717%2FOauthRedirect&state=S",
			u.RawQuery)
	})

	t.Run("with PKCE", func(t *testing.T) {
		secrets := &auth.SessionSecrets{State: "S", CodeVerifier: testCodeVerifier, CodeChallenge: testCodeChallenge}
		u, err := auth.BuildAuthorizationURL(cfg, secrets, "")
		require.NoError(t, err)
		q := u.Query()
		require.Equal(t, testCodeChallenge, q.Get("code_challenge"))
		require.Equal(t, "S256", q.Get("code_challenge_method"))
		require.NotContains(t, u.String(), testCodeVerifier)
	})

	t.Run("resolved redirect and scope", func(t *testing.T) {
		withScope := *cfg
		withScope.Scope = "api refresh_token"
		u, err := auth.BuildAuthorizationURL(&withScope, &auth.SessionSecrets{State: "S"}, "http://127.0.0.1:5555/cb")
		require.NoError(t, err)
		require.Equal(t, "http://127.0.0.1:5555/cb", u.Query().Get("redirect_uri"))
		require.Equal(t, "api refresh_token", u.Query().Get("scope"))
	})

	t.Run("existing query preserved", func(t *testing.T) {
		withQuery := *cfg
		withQuery.AuthorizationEndpoint = "https://idp.example.com/authorize?prompt=login"
		u, err := auth.BuildAuthorizationURL(&withQuery, &auth.SessionSecrets{State: "S"}, "")
		require.NoError(t, err)
		require.Equal(t, "login", u.Query().Get("prompt"))
		require.Equal(t, "code", u.Query().Get("response_type"))
	})

	t.Run("malformed endpoint", func(t *testing.T) {
		for _, endpoint := range []string{"::not a uri", "/relative/authorize", "https://"} {
			bad := *cfg
			bad.AuthorizationEndpoint = endpoint
			_, err := auth.BuildAuthorizationURL(&bad, &auth.SessionSecrets{State: "S"}, "")
			require.ErrorIs(t, err, oauthmodel.ErrInvalidURI, endpoint)
		}
	})
}

func TestForm_Encode(t *testing.T) {
	body := auth.NewForm().
		Add("grant_type", "refresh_token").
		Add("refresh_token", "r/1+2").
		AddIf("client_secret", "  ").
		Encode()
	require.Equal(t, "grant_type=refresh_token&refresh_token=r%2F1%2B2", body)
}
