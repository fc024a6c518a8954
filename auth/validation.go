package auth

import (
	"fmt"
	"net/url"

	"github.com/jrsteele09/go-oauth-client/oauth2"
	"github.com/jrsteele09/go-oauth-client/oauthmodel"
)

// Field names a FlowConfig field by its wire name.
type Field string

const (
	FieldClientID              Field = "client_id"
	FieldClientSecret          Field = "client_secret"
	FieldRedirectURI           Field = "redirect_uri"
	FieldAuthorizationEndpoint Field = "authorization_endpoint"
	FieldTokenEndpoint         Field = "token_endpoint"
	FieldRefreshToken          Field = "refresh_token"
)

func (f Field) valueOf(cfg *oauthmodel.FlowConfig) string {
	switch f {
	case FieldClientID:
		return cfg.ClientID
	case FieldClientSecret:
		return cfg.ClientSecret
	case FieldRedirectURI:
		return cfg.RedirectURI
	case FieldAuthorizationEndpoint:
		return cfg.AuthorizationEndpoint
	case FieldTokenEndpoint:
		return cfg.TokenEndpoint
	case FieldRefreshToken:
		return cfg.RefreshToken
	}
	return ""
}

// Validator provides the configuration checks every flow runs before it
// touches the network.
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateRequired returns a *oauthmodel.ConfigurationError naming every field
// in required that is missing or blank.
func (v *Validator) ValidateRequired(grant oauth2.GrantType, cfg *oauthmodel.FlowConfig, required ...Field) error {
	if cfg == nil {
		return &oauthmodel.ConfigurationError{Grant: grant.String(), Reason: "no configuration supplied"}
	}

	var missing []string
	for _, f := range required {
		if oauthmodel.IsBlank(f.valueOf(cfg)) {
			missing = append(missing, string(f))
		}
	}
	if len(missing) > 0 {
		return &oauthmodel.ConfigurationError{Grant: grant.String(), Missing: missing}
	}
	return nil
}

// ValidateRedirectURI checks that a redirect URI can back a loopback listener:
// an absolute http URI with a host.
func (v *Validator) ValidateRedirectURI(grant oauth2.GrantType, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &oauthmodel.ConfigurationError{Grant: grant.String(), Reason: fmt.Sprintf("redirect_uri: %v", err)}
	}
	if u.Scheme != "http" {
		return &oauthmodel.ConfigurationError{Grant: grant.String(), Reason: fmt.Sprintf("redirect_uri %q must use the http scheme", raw)}
	}
	if u.Hostname() == "" {
		return &oauthmodel.ConfigurationError{Grant: grant.String(), Reason: fmt.Sprintf("redirect_uri %q has no host", raw)}
	}
	return nil
}
