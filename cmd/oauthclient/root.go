package main

import (
	"os"

	"github.com/jrsteele09/go-oauth-client/internal/config"
	"github.com/jrsteele09/go-oauth-client/oauth2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
	output     string
	noBrowser  bool
	showTokens bool
	quiet      bool
}

func newRootCmd() *cobra.Command {
	cfg := config.New()
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "oauthclient",
		Short: "Obtain OAuth 2.0 access tokens from the command line",
		Long: `oauthclient obtains access tokens using the client credentials,
refresh token or authorization code grant. The authorization code grant opens
a browser and receives the redirect on a local loopback listener.

The flow is described by a YAML file (default: $OAUTH_CONFIG_FILE or oauth.yaml).
Secrets can be supplied with OAUTH_CLIENT_SECRET and OAUTH_REFRESH_TOKEN.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cfg, opts.quiet)
			if !opts.quiet {
				displayAppname(cfg.GetAppName())
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", cfg.GetConfigFile(), "flow configuration file")
	flags.StringVarP(&opts.output, "output", "o", outputTable, "output format (table|json)")
	flags.BoolVar(&opts.noBrowser, "no-browser", false, "print the authorization URL instead of opening a browser")
	flags.BoolVar(&opts.showTokens, "show-tokens", false, "print raw token values in table output")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "only print the result")

	rootCmd.AddCommand(
		newTokenCmd(cfg, opts),
		newGrantCmd(cfg, opts, oauth2.ClientCredentialsGrant, "client-credentials", "Obtain a token with the client credentials grant"),
		newGrantCmd(cfg, opts, oauth2.RefreshTokenGrant, "refresh", "Exchange a refresh token for a new access token"),
		newGrantCmd(cfg, opts, oauth2.AuthorizationCodeGrant, "authorize", "Authorize in the browser and exchange the returned code"),
	)
	return rootCmd
}

// setupLogging installs the global zerolog logger. Logs go to stderr so that
// stdout only carries the command result.
func setupLogging(cfg config.EnvConfig, quiet bool) {
	level := cfg.GetLogLevel()
	if quiet && level < zerolog.WarnLevel {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.GetPrettyLogs() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}
