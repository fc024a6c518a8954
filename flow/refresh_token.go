package flow

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-oauth-client/auth"
	"github.com/jrsteele09/go-oauth-client/oauth2"
	"github.com/jrsteele09/go-oauth-client/oauthmodel"
)

// RefreshToken trades a refresh token for a new access token. A client
// secret, when configured, is sent in the body.
type RefreshToken struct {
	base
}

func NewRefreshToken(exchanger TokenExchanger, opts ...Option) *RefreshToken {
	return &RefreshToken{base: newBase(exchanger, opts...)}
}

func (f *RefreshToken) GrantType() oauth2.GrantType {
	return oauth2.RefreshTokenGrant
}

func (f *RefreshToken) ValidateConfig(cfg *oauthmodel.FlowConfig) error {
	return f.validator.ValidateRequired(f.GrantType(), cfg,
		auth.FieldClientID, auth.FieldRefreshToken, auth.FieldTokenEndpoint)
}

func (f *RefreshToken) BuildHeaders(*oauthmodel.FlowConfig) http.Header {
	return commonHeaders()
}

func (f *RefreshToken) BuildBody(cfg *oauthmodel.FlowConfig, _ *oauthmodel.AuthorizationGrant) string {
	return auth.NewForm().
		Add("grant_type", f.GrantType().String()).
		Add("refresh_token", cfg.RefreshToken).
		Add("client_id", cfg.ClientID).
		AddIf("client_secret", cfg.ClientSecret).
		AddIf("scope", cfg.Scope).
		Encode()
}

func (f *RefreshToken) GetToken(ctx context.Context, cfg *oauthmodel.FlowConfig) (*oauth2.TokenResponse, error) {
	if err := f.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	logger := f.attemptLogger(f.GrantType())
	return f.exchange(ctx, logger, f, cfg, nil)
}
