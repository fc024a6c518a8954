package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jrsteele09/go-oauth-client/internal/errors"
	"github.com/jrsteele09/go-oauth-client/oauth2"
	"github.com/jrsteele09/go-oauth-client/oauthmodel"
	"gopkg.in/yaml.v3"
)

const (
	clientSecretEnvVar = "OAUTH_CLIENT_SECRET"
	refreshTokenEnvVar = "OAUTH_REFRESH_TOKEN"
)

// FlowFile is the on-disk description of a token acquisition.
//
//	grant_type: authorization_code
//	client_id: my-client
//	redirect_uri: http://localhost:1717/OauthRedirect
//	authorization_endpoint: https://login.example.com/services/oauth2/authorize
//	token_endpoint: https://login.example.com/services/oauth2/token
//	pkce_enabled: true
//
// Secrets may be left out of the file and supplied through OAUTH_CLIENT_SECRET
// and OAUTH_REFRESH_TOKEN instead.
type FlowFile struct {
	GrantType             string `yaml:"grant_type"`
	ClientID              string `yaml:"client_id"`
	ClientSecret          string `yaml:"client_secret"`
	RedirectURI           string `yaml:"redirect_uri"`
	AuthorizationEndpoint string `yaml:"authorization_endpoint"`
	TokenEndpoint         string `yaml:"token_endpoint"`
	RefreshToken          string `yaml:"refresh_token"`
	PKCEEnabled           *bool  `yaml:"pkce_enabled"`
	Scope                 string `yaml:"scope"`
	Issuer                string `yaml:"issuer"`
}

// LoadFlowFile reads and decodes a flow file. Unknown keys are rejected so a
// misspelt field does not silently fall back to a default.
func LoadFlowFile(path string) (*FlowFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", errors.ErrConfigFileNotFound, path)
		}
		return nil, errors.Wrapf(err, "read config file %s", path)
	}

	var ff FlowFile
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&ff); err != nil {
		return nil, errors.Wrapf(err, "decode config file %s", path)
	}
	return &ff, nil
}

// Grant returns the configured grant type, or fallback when the file names none.
func (f *FlowFile) Grant(fallback oauth2.GrantType) (oauth2.GrantType, error) {
	if f.GrantType == "" {
		return fallback, nil
	}
	g, ok := oauth2.ParseGrantType(f.GrantType)
	if !ok {
		return "", fmt.Errorf("%w: %q", errors.ErrUnknownGrant, f.GrantType)
	}
	return g, nil
}

// FlowConfig builds the flow configuration, applying environment overrides for
// secrets and the security default for PKCE.
func (f *FlowFile) FlowConfig(sec SecurityConfig) *oauthmodel.FlowConfig {
	cfg := &oauthmodel.FlowConfig{
		ClientID:              f.ClientID,
		ClientSecret:          GetEnv(clientSecretEnvVar, f.ClientSecret),
		RedirectURI:           f.RedirectURI,
		AuthorizationEndpoint: f.AuthorizationEndpoint,
		TokenEndpoint:         f.TokenEndpoint,
		RefreshToken:          GetEnv(refreshTokenEnvVar, f.RefreshToken),
		PKCEEnabled:           sec.GetPKCEDefault(),
		Scope:                 f.Scope,
		Issuer:                f.Issuer,
	}
	if f.PKCEEnabled != nil {
		cfg.PKCEEnabled = *f.PKCEEnabled
	}
	return cfg
}
