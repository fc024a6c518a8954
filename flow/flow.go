package flow

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-oauth-client/auth"
	internalerrors "github.com/jrsteele09/go-oauth-client/internal/errors"
	"github.com/jrsteele09/go-oauth-client/oauth2"
	"github.com/jrsteele09/go-oauth-client/oauthmodel"
	"github.com/jrsteele09/go-oauth-client/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultCallbackTimeout = 60 * time.Second

	contentTypeForm = "application/x-www-form-urlencoded"
	acceptJSON      = "application/json"
)

// Flow obtains a token with one OAuth 2.0 grant type.
type Flow interface {
	GrantType() oauth2.GrantType

	// ValidateConfig returns a *oauthmodel.ConfigurationError when a field the
	// grant needs is missing or blank.
	ValidateConfig(cfg *oauthmodel.FlowConfig) error

	BuildHeaders(cfg *oauthmodel.FlowConfig) http.Header

	// BuildBody returns the form-encoded token request body. grant is only
	// read by the authorization code flow and may be nil otherwise.
	BuildBody(cfg *oauthmodel.FlowConfig, grant *oauthmodel.AuthorizationGrant) string

	GetToken(ctx context.Context, cfg *oauthmodel.FlowConfig) (*oauth2.TokenResponse, error)
}

// TokenExchanger sends a token request. *token.Exchanger implements it.
type TokenExchanger interface {
	Exchange(ctx context.Context, endpoint string, header http.Header, body string) (*oauth2.TokenResponse, error)
}

type options struct {
	logger          zerolog.Logger
	browser         Browser
	callbackTimeout time.Duration
	shutdownGrace   time.Duration
	appName         string
	onAuthorizeURL  func(string)
}

type Option func(*options)

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithBrowser replaces the system browser launcher.
func WithBrowser(b Browser) Option {
	return func(o *options) {
		o.browser = b
	}
}

func WithCallbackTimeout(d time.Duration) Option {
	return func(o *options) {
		o.callbackTimeout = d
	}
}

// WithShutdownGrace bounds how long the callback listener waits for in-flight
// requests when it stops. It is clamped to server.MaxShutdownGrace.
func WithShutdownGrace(d time.Duration) Option {
	return func(o *options) {
		o.shutdownGrace = d
	}
}

// WithAppName sets the name shown on the browser success page.
func WithAppName(name string) Option {
	return func(o *options) {
		o.appName = name
	}
}

// WithAuthorizationURLHandler registers fn to receive the authorization URL
// before the browser is launched, so it can be shown to the user.
func WithAuthorizationURLHandler(fn func(string)) Option {
	return func(o *options) {
		o.onAuthorizeURL = fn
	}
}

func newOptions(opts ...Option) options {
	o := options{
		logger:          log.Logger,
		browser:         SystemBrowser{},
		callbackTimeout: DefaultCallbackTimeout,
		shutdownGrace:   server.MaxShutdownGrace,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New returns the Flow for grant.
func New(grant oauth2.GrantType, exchanger TokenExchanger, opts ...Option) (Flow, error) {
	switch grant {
	case oauth2.ClientCredentialsGrant:
		return NewClientCredentials(exchanger, opts...), nil
	case oauth2.RefreshTokenGrant:
		return NewRefreshToken(exchanger, opts...), nil
	case oauth2.AuthorizationCodeGrant:
		return NewAuthorizationCode(exchanger, opts...), nil
	}
	return nil, fmt.Errorf("%w: %q", internalerrors.ErrUnknownGrant, grant)
}

// commonHeaders are sent with every token request.
func commonHeaders() http.Header {
	h := http.Header{}
	h.Set("Content-Type", contentTypeForm)
	h.Set("Accept", acceptJSON)
	return h
}

// base is the part every strategy shares: the exchanger, validation and the
// per-attempt logger.
type base struct {
	TokenExchanger
	validator *auth.Validator
	opts      options
}

func newBase(exchanger TokenExchanger, opts ...Option) base {
	return base{
		TokenExchanger: exchanger,
		validator:      auth.NewValidator(),
		opts:           newOptions(opts...),
	}
}

// attemptLogger tags every log line of one GetToken call with a fresh attempt id.
func (b *base) attemptLogger(grant oauth2.GrantType) zerolog.Logger {
	return b.opts.logger.With().
		Str("attempt_id", uuid.NewString()).
		Str("grant_type", grant.String()).
		Logger()
}

// exchange sends the request built by f to the token endpoint.
func (b *base) exchange(ctx context.Context, logger zerolog.Logger, f Flow, cfg *oauthmodel.FlowConfig, grant *oauthmodel.AuthorizationGrant) (*oauth2.TokenResponse, error) {
	logger.Info().Str("token_endpoint", cfg.TokenEndpoint).Msg("Exchanging grant for token")

	tokenResponse, err := b.Exchange(logger.WithContext(ctx), cfg.TokenEndpoint, f.BuildHeaders(cfg), f.BuildBody(cfg, grant))
	if err != nil {
		logger.Err(err).Msg("Token request failed")
		return nil, err
	}

	logger.Info().Str("token_type", tokenResponse.TokenType).Int("expires_in", tokenResponse.ExpiresIn).Msg("Token obtained")
	return tokenResponse, nil
}
