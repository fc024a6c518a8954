package flow_test

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jrsteele09/go-oauth-client/flow"
	"github.com/jrsteele09/go-oauth-client/oauth2"
	"github.com/jrsteele09/go-oauth-client/oauthmodel"
	"github.com/jrsteele09/go-oauth-client/token"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	testClientID     = "c1"
	testClientSecret = "s1"
	testRedirectURI  = "http://127.0.0.1:0/callback"
)

// recordingExchanger records every call and answers with a fixed result.
type recordingExchanger struct {
	mu       sync.Mutex
	calls    int
	endpoint string
	header   http.Header
	body     string
	response *oauth2.TokenResponse
	err      error
}

func (r *recordingExchanger) Exchange(_ context.Context, endpoint string, header http.Header, body string) (*oauth2.TokenResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.endpoint, r.header, r.body = endpoint, header, body
	return r.response, r.err
}

// tokenEndpoint is an httptest token endpoint that records the last request.
type tokenEndpoint struct {
	*httptest.Server
	mu     sync.Mutex
	header http.Header
	body   string
}

func newTokenEndpoint(t *testing.T, status int, response string) *tokenEndpoint {
	t.Helper()
	te := &tokenEndpoint{}
	te.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		te.mu.Lock()
		te.header = r.Header.Clone()
		te.body = string(body)
		te.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(te.Close)
	return te
}

func (te *tokenEndpoint) lastRequest() (http.Header, string) {
	te.mu.Lock()
	defer te.mu.Unlock()
	return te.header, te.body
}

func quietOptions(opts ...flow.Option) []flow.Option {
	return append([]flow.Option{flow.WithLogger(zerolog.Nop())}, opts...)
}

func newExchanger() *token.Exchanger {
	return token.NewExchanger(token.WithLogger(zerolog.Nop()))
}

func TestNew(t *testing.T) {
	for _, grant := range []oauth2.GrantType{oauth2.ClientCredentialsGrant, oauth2.RefreshTokenGrant, oauth2.AuthorizationCodeGrant} {
		f, err := flow.New(grant, &recordingExchanger{})
		require.NoError(t, err)
		require.Equal(t, grant, f.GrantType())
	}

	_, err := flow.New(oauth2.GrantType("password"), &recordingExchanger{})
	require.Error(t, err)
}

func TestGetToken_ConfigurationErrorsBeforeNetwork(t *testing.T) {
	tests := []struct {
		name        string
		grant       oauth2.GrantType
		cfg         *oauthmodel.FlowConfig
		wantMissing []string
	}{
		{
			name:        "client credentials without secret",
			grant:       oauth2.ClientCredentialsGrant,
			cfg:         &oauthmodel.FlowConfig{ClientID: testClientID, TokenEndpoint: "https://idp/token"},
			wantMissing: []string{"client_secret"},
		},
		{
			name:        "client credentials blank fields",
			grant:       oauth2.ClientCredentialsGrant,
			cfg:         &oauthmodel.FlowConfig{ClientID: "  ", ClientSecret: testClientSecret},
			wantMissing: []string{"client_id", "token_endpoint"},
		},
		{
			name:        "refresh without refresh token",
			grant:       oauth2.RefreshTokenGrant,
			cfg:         &oauthmodel.FlowConfig{ClientID: testClientID, TokenEndpoint: "https://idp/token"},
			wantMissing: []string{"refresh_token"},
		},
		{
			name:        "authorization code with nothing",
			grant:       oauth2.AuthorizationCodeGrant,
			cfg:         &oauthmodel.FlowConfig{},
			wantMissing: []string{"client_id", "redirect_uri", "authorization_endpoint", "token_endpoint"},
		},
		{
			name:  "nil config",
			grant: oauth2.RefreshTokenGrant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exchanger := &recordingExchanger{}
			browser := &fakeBrowser{}
			f, err := flow.New(tt.grant, exchanger, quietOptions(flow.WithBrowser(browser))...)
			require.NoError(t, err)

			_, err = f.GetToken(context.Background(), tt.cfg)
			require.ErrorIs(t, err, oauthmodel.ErrConfiguration)

			var cfgErr *oauthmodel.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			require.Equal(t, tt.wantMissing, cfgErr.Missing)
			require.Zero(t, exchanger.calls)
			require.Zero(t, browser.opened())
		})
	}
}

func TestAuthorizationCode_RejectsNonLoopbackScheme(t *testing.T) {
	exchanger := &recordingExchanger{}
	f := flow.NewAuthorizationCode(exchanger, quietOptions()...)

	_, err := f.GetToken(context.Background(), &oauthmodel.FlowConfig{
		ClientID:              testClientID,
		RedirectURI:           "https://app.example.com/callback",
		AuthorizationEndpoint: "https://idp/authorize",
		TokenEndpoint:         "https://idp/token",
	})
	require.ErrorIs(t, err, oauthmodel.ErrConfiguration)
	require.Zero(t, exchanger.calls)
}

// Scenario A.
func TestClientCredentials_GetToken(t *testing.T) {
	te := newTokenEndpoint(t, http.StatusOK, `{"access_token":"tok","token_type":"bearer"}`)
	f := flow.NewClientCredentials(newExchanger(), quietOptions()...)

	resp, err := f.GetToken(context.Background(), &oauthmodel.FlowConfig{
		ClientID:      testClientID,
		ClientSecret:  testClientSecret,
		TokenEndpoint: te.URL,
	})
	require.NoError(t, err)
	require.Equal(t, "tok", resp.GetAccessToken())

	header, body := te.lastRequest()
	require.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("c1:s1")), header.Get("Authorization"))
	require.Equal(t, "application/x-www-form-urlencoded", header.Get("Content-Type"))
	require.Equal(t, "application/json", header.Get("Accept"))
	require.Equal(t, "grant_type=client_credentials", body)
	require.NotContains(t, body, "client_secret")
}

func TestClientCredentials_BuildBodyWithScope(t *testing.T) {
	f := flow.NewClientCredentials(&recordingExchanger{}, quietOptions()...)
	body := f.BuildBody(&oauthmodel.FlowConfig{Scope: "api.read api.write"}, nil)
	require.Equal(t, "grant_type=client_credentials&scope=api.read+api.write", body)
}

// Scenario B.
func TestRefreshToken_BuildBody(t *testing.T) {
	f := flow.NewRefreshToken(&recordingExchanger{}, quietOptions()...)

	cfg := &oauthmodel.FlowConfig{ClientID: testClientID, RefreshToken: "r1", TokenEndpoint: "https://idp/token"}
	require.Equal(t, "grant_type=refresh_token&refresh_token=r1&client_id=c1", f.BuildBody(cfg, nil))

	cfg.ClientSecret = testClientSecret
	require.Equal(t, "grant_type=refresh_token&refresh_token=r1&client_id=c1&client_secret=s1", f.BuildBody(cfg, nil))

	headers := f.BuildHeaders(cfg)
	require.Empty(t, headers.Get("Authorization"))
	require.Equal(t, "application/x-www-form-urlencoded", headers.Get("Content-Type"))
}

func TestRefreshToken_GetToken(t *testing.T) {
	exchanger := &recordingExchanger{response: &oauth2.TokenResponse{AccessToken: ptr("new")}}
	f := flow.NewRefreshToken(exchanger, quietOptions()...)

	resp, err := f.GetToken(context.Background(), &oauthmodel.FlowConfig{
		ClientID:      testClientID,
		RefreshToken:  "r1",
		TokenEndpoint: "https://idp/token",
	})
	require.NoError(t, err)
	require.Equal(t, "new", resp.GetAccessToken())
	require.Equal(t, 1, exchanger.calls)
	require.Equal(t, "https://idp/token", exchanger.endpoint)
	require.Equal(t, "grant_type=refresh_token&refresh_token=r1&client_id=c1", exchanger.body)
}

// Scenario D.
func TestGetToken_ProtocolError(t *testing.T) {
	te := newTokenEndpoint(t, http.StatusBadRequest, `{"error":"invalid_grant","error_description":"expired"}`)
	f := flow.NewRefreshToken(newExchanger(), quietOptions()...)

	_, err := f.GetToken(context.Background(), &oauthmodel.FlowConfig{
		ClientID:      testClientID,
		RefreshToken:  "r1",
		TokenEndpoint: te.URL,
	})
	require.ErrorIs(t, err, oauthmodel.ErrProtocol)

	var protocolErr *oauthmodel.ProtocolError
	require.True(t, errors.As(err, &protocolErr))
	require.Equal(t, "invalid_grant", protocolErr.Code)
	require.Equal(t, "expired", protocolErr.Description)
}

func TestAuthorizationCode_BuildBody(t *testing.T) {
	f := flow.NewAuthorizationCode(&recordingExchanger{}, quietOptions()...)
	cfg := &oauthmodel.FlowConfig{ClientID: testClientID, RedirectURI: "http://localhost:8080/cb"}

	body := f.BuildBody(cfg, &oauthmodel.AuthorizationGrant{Code: "abc"})
	require.Equal(t, "grant_type=authorization_code&code=abc&client_id=c1&redirect_uri=http%3A%2F%2Flocalhost%3A8080%2Fcb", body)

	cfg.ClientSecret = testClientSecret
	body = f.BuildBody(cfg, &oauthmodel.AuthorizationGrant{Code: "abc", CodeVerifier: "v"})
	require.Equal(t, "grant_type=authorization_code&code=abc&client_id=c1&redirect_uri=http%3A%2F%2Flocalhost%3A8080%2Fcb&client_secret=s1&code_verifier=v", body)
}

func ptr(s string) *string {
	return &s
}
