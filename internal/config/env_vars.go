package config

import (
	"os"
	"strconv"

	"github.com/rs/zerolog"
)

const (
	appNameVar    = "APP_NAME"
	envVar        = "ENV"
	logLevelVar   = "LOG_LEVEL"
	configFileVar = "OAUTH_CONFIG_FILE"
	prettyLogsVar = "LOG_PRETTY"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Go OAuth Client")
}

func (EnvVars) GetEnv() string {
	return GetEnv(envVar, "DEV")
}

// GetLogLevel parses LOG_LEVEL, falling back to info for blank or unknown values.
func (EnvVars) GetLogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(GetEnv(logLevelVar, "info"))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func (EnvVars) GetConfigFile() string {
	return GetEnv(configFileVar, "oauth.yaml")
}

func (e EnvVars) GetPrettyLogs() bool {
	return GetBool(prettyLogsVar, e.GetEnv() == "DEV")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetBool(envVar string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return value
}
