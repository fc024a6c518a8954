package flow

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/jrsteele09/go-oauth-client/auth"
	"github.com/jrsteele09/go-oauth-client/oauth2"
	"github.com/jrsteele09/go-oauth-client/oauthmodel"
)

// ClientCredentials authenticates the client itself. The secret travels in a
// Basic Authorization header, never in the body.
type ClientCredentials struct {
	base
}

func NewClientCredentials(exchanger TokenExchanger, opts ...Option) *ClientCredentials {
	return &ClientCredentials{base: newBase(exchanger, opts...)}
}

func (f *ClientCredentials) GrantType() oauth2.GrantType {
	return oauth2.ClientCredentialsGrant
}

func (f *ClientCredentials) ValidateConfig(cfg *oauthmodel.FlowConfig) error {
	return f.validator.ValidateRequired(f.GrantType(), cfg,
		auth.FieldClientID, auth.FieldClientSecret, auth.FieldTokenEndpoint)
}

func (f *ClientCredentials) BuildHeaders(cfg *oauthmodel.FlowConfig) http.Header {
	h := commonHeaders()
	credentials := cfg.ClientID + ":" + cfg.ClientSecret
	h.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(credentials)))
	return h
}

func (f *ClientCredentials) BuildBody(cfg *oauthmodel.FlowConfig, _ *oauthmodel.AuthorizationGrant) string {
	return auth.NewForm().
		Add("grant_type", f.GrantType().String()).
		AddIf("scope", cfg.Scope).
		Encode()
}

func (f *ClientCredentials) GetToken(ctx context.Context, cfg *oauthmodel.FlowConfig) (*oauth2.TokenResponse, error) {
	if err := f.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	logger := f.attemptLogger(f.GrantType())
	return f.exchange(ctx, logger, f, cfg, nil)
}
