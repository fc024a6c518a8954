package config

type SecurityConfig interface {
	GetPKCEDefault() bool
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetPKCEDefault is applied when a flow file does not set pkce_enabled.
func (Security) GetPKCEDefault() bool {
	return GetBool("OAUTH_PKCE", true)
}
