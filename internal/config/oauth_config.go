package config

import (
	"os"
	"time"

	"github.com/jrsteele09/go-oauth-client/server"
)

type OAuthConfig interface {
	GetCallbackTimeout() time.Duration
	GetShutdownGrace() time.Duration
	GetHTTPTimeout() time.Duration
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

// MaxShutdownGrace bounds how long a callback listener waits for in-flight
// requests before it is closed forcibly.
const MaxShutdownGrace = server.MaxShutdownGrace

// GetCallbackTimeout is how long the authorization code flow waits for the browser redirect.
func (OAuth) GetCallbackTimeout() time.Duration {
	return GetDuration("OAUTH_CALLBACK_TIMEOUT", 60*time.Second)
}

func (OAuth) GetShutdownGrace() time.Duration {
	grace := GetDuration("OAUTH_SHUTDOWN_GRACE", MaxShutdownGrace)
	if grace > MaxShutdownGrace {
		return MaxShutdownGrace
	}
	return grace
}

// GetHTTPTimeout bounds the single token endpoint round trip.
func (OAuth) GetHTTPTimeout() time.Duration {
	return GetDuration("OAUTH_HTTP_TIMEOUT", 30*time.Second)
}

func GetDuration(envVar string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(envVar))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
