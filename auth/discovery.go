package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-oauth-client/oauthmodel"
	"github.com/rs/zerolog/log"
)

// DiscoverEndpoints fills blank authorization and token endpoints from the
// issuer's OpenID discovery document. Endpoints already set are kept. cfg is
// not modified, a copy is returned. Without an issuer cfg is returned as is.
func DiscoverEndpoints(ctx context.Context, cfg *oauthmodel.FlowConfig) (*oauthmodel.FlowConfig, error) {
	out := *cfg
	if oauthmodel.IsBlank(cfg.Issuer) {
		return &out, nil
	}
	if !oauthmodel.IsBlank(cfg.AuthorizationEndpoint) && !oauthmodel.IsBlank(cfg.TokenEndpoint) {
		return &out, nil
	}

	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, &oauthmodel.ConnectionError{Op: "oidc discovery", Err: fmt.Errorf("issuer %s: %w", cfg.Issuer, err)}
	}

	endpoint := provider.Endpoint()
	if oauthmodel.IsBlank(out.AuthorizationEndpoint) {
		out.AuthorizationEndpoint = endpoint.AuthURL
	}
	if oauthmodel.IsBlank(out.TokenEndpoint) {
		out.TokenEndpoint = endpoint.TokenURL
	}

	log.Debug().
		Str("issuer", cfg.Issuer).
		Str("authorization_endpoint", out.AuthorizationEndpoint).
		Str("token_endpoint", out.TokenEndpoint).
		Msg("discovered oauth endpoints")
	return &out, nil
}
