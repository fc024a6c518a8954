package flow

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-oauth-client/auth"
	"github.com/jrsteele09/go-oauth-client/oauth2"
	"github.com/jrsteele09/go-oauth-client/oauthmodel"
	"github.com/jrsteele09/go-oauth-client/server"
	"github.com/rs/zerolog"
)

// AuthorizationCode runs the browser based flow: it starts a loopback
// listener, sends the user to the authorization endpoint, waits for the
// redirect and exchanges the returned code.
type AuthorizationCode struct {
	base
}

func NewAuthorizationCode(exchanger TokenExchanger, opts ...Option) *AuthorizationCode {
	return &AuthorizationCode{base: newBase(exchanger, opts...)}
}

func (f *AuthorizationCode) GrantType() oauth2.GrantType {
	return oauth2.AuthorizationCodeGrant
}

func (f *AuthorizationCode) ValidateConfig(cfg *oauthmodel.FlowConfig) error {
	err := f.validator.ValidateRequired(f.GrantType(), cfg,
		auth.FieldClientID, auth.FieldRedirectURI, auth.FieldAuthorizationEndpoint, auth.FieldTokenEndpoint)
	if err != nil {
		return err
	}
	return f.validator.ValidateRedirectURI(f.GrantType(), cfg.RedirectURI)
}

func (f *AuthorizationCode) BuildHeaders(*oauthmodel.FlowConfig) http.Header {
	return commonHeaders()
}

// BuildBody uses the redirect URI and verifier recorded in grant. The redirect
// URI falls back to cfg.RedirectURI when grant does not carry one.
func (f *AuthorizationCode) BuildBody(cfg *oauthmodel.FlowConfig, grant *oauthmodel.AuthorizationGrant) string {
	if grant == nil {
		grant = &oauthmodel.AuthorizationGrant{}
	}
	redirectURI := grant.RedirectURI
	if oauthmodel.IsBlank(redirectURI) {
		redirectURI = cfg.RedirectURI
	}

	return auth.NewForm().
		Add("grant_type", f.GrantType().String()).
		Add("code", grant.Code).
		Add("client_id", cfg.ClientID).
		Add("redirect_uri", redirectURI).
		AddIf("client_secret", cfg.ClientSecret).
		AddIf("code_verifier", grant.CodeVerifier).
		Encode()
}

func (f *AuthorizationCode) GetToken(ctx context.Context, cfg *oauthmodel.FlowConfig) (*oauth2.TokenResponse, error) {
	if err := f.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	logger := f.attemptLogger(f.GrantType())

	grant, err := f.authorize(ctx, logger, cfg)
	if err != nil {
		return nil, err
	}
	return f.exchange(ctx, logger, f, cfg, grant)
}

// authorize drives the browser round trip and returns the code to exchange.
// The listener is stopped before it returns.
func (f *AuthorizationCode) authorize(ctx context.Context, logger zerolog.Logger, cfg *oauthmodel.FlowConfig) (*oauthmodel.AuthorizationGrant, error) {
	secrets, err := auth.NewSessionSecrets(cfg.PKCEEnabled)
	if err != nil {
		return nil, err
	}

	listenerOpts := []server.ListenerOption{
		server.WithLogger(logger),
		server.WithShutdownGrace(f.opts.shutdownGrace),
	}
	if f.opts.appName != "" {
		listenerOpts = append(listenerOpts, server.WithAppName(f.opts.appName))
	}
	listener, err := server.NewCallbackListener(cfg.RedirectURI, secrets.State, listenerOpts...)
	if err != nil {
		return nil, err
	}
	if err := listener.Start(); err != nil {
		return nil, err
	}
	defer listener.Stop()

	redirectURI := listener.RedirectURI()
	authURL, err := auth.BuildAuthorizationURL(cfg, secrets, redirectURI)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Bool("pkce", secrets.PKCEEnabled()).
		Str("redirect_uri", redirectURI).
		Msg("Waiting for authorization callback")

	if f.opts.onAuthorizeURL != nil {
		f.opts.onAuthorizeURL(authURL.String())
	}
	if err := f.opts.browser.Open(authURL.String()); err != nil {
		logger.Warn().Err(err).Str("url", authURL.String()).Msg("Could not open browser, open the URL manually")
	}

	outcome, err := listener.WaitForCallback(ctx, f.opts.callbackTimeout)
	listener.Stop()
	if err != nil {
		logger.Err(err).Msg("No authorization callback received")
		return nil, err
	}
	if !outcome.IsSuccess() {
		logger.Warn().Str("error", outcome.ErrorCode()).Msg("Authorization failed")
		return nil, outcome.Err()
	}

	return &oauthmodel.AuthorizationGrant{
		Code:         outcome.Code(),
		RedirectURI:  redirectURI,
		CodeVerifier: secrets.CodeVerifier,
	}, nil
}
