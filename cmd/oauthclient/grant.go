package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jrsteele09/go-oauth-client/auth"
	"github.com/jrsteele09/go-oauth-client/flow"
	"github.com/jrsteele09/go-oauth-client/internal/config"
	"github.com/jrsteele09/go-oauth-client/oauth2"
	"github.com/jrsteele09/go-oauth-client/oauthmodel"
	"github.com/jrsteele09/go-oauth-client/token"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newTokenCmd(cfg config.Config, opts *rootOptions) *cobra.Command {
	var grantFlag string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Obtain a token with the grant named in the configuration file",
		Example: `  oauthclient token -c salesforce.yaml
  oauthclient token --grant refresh_token -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ff, err := config.LoadFlowFile(opts.configFile)
			if err != nil {
				return err
			}
			fallback := oauth2.ClientCredentialsGrant
			if grantFlag != "" {
				g, ok := oauth2.ParseGrantType(grantFlag)
				if !ok {
					return fmt.Errorf("unknown grant type %q", grantFlag)
				}
				ff.GrantType = ""
				fallback = g
			}
			grant, err := ff.Grant(fallback)
			if err != nil {
				return err
			}
			return runGrant(cmd.Context(), cfg, opts, grant, ff.FlowConfig(cfg))
		},
	}
	cmd.Flags().StringVar(&grantFlag, "grant", "", "override the grant type (client_credentials|refresh_token|authorization_code)")
	return cmd
}

func newGrantCmd(cfg config.Config, opts *rootOptions, grant oauth2.GrantType, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			ff, err := config.LoadFlowFile(opts.configFile)
			if err != nil {
				return err
			}
			return runGrant(cmd.Context(), cfg, opts, grant, ff.FlowConfig(cfg))
		},
	}
}

func runGrant(ctx context.Context, cfg config.Config, opts *rootOptions, grant oauth2.GrantType, flowCfg *oauthmodel.FlowConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	flowCfg, err := auth.DiscoverEndpoints(ctx, flowCfg)
	if err != nil {
		return err
	}

	exchanger := token.NewExchanger(
		token.WithTransport(&http.Client{Timeout: cfg.GetHTTPTimeout()}),
		token.WithCodec(token.NewJSONCodec()),
		token.WithLogger(log.Logger),
	)

	wait := newWaitIndicator(opts.quiet)
	defer wait.Stop()

	f, err := flow.New(grant, exchanger,
		flow.WithLogger(log.Logger),
		flow.WithAppName(cfg.GetAppName()),
		flow.WithCallbackTimeout(cfg.GetCallbackTimeout()),
		flow.WithShutdownGrace(cfg.GetShutdownGrace()),
		flow.WithBrowser(browserFor(opts.noBrowser)),
		flow.WithAuthorizationURLHandler(func(u string) {
			fmt.Fprintf(os.Stderr, "Open the following URL to authorize:\n\n  %s\n\n", u)
			wait.Start()
		}),
	)
	if err != nil {
		return err
	}

	tokenResponse, err := f.GetToken(ctx, flowCfg)
	wait.Stop()
	if err != nil {
		return err
	}
	return printToken(os.Stdout, opts, tokenResponse)
}

func browserFor(noBrowser bool) flow.Browser {
	if noBrowser {
		return flow.BrowserFunc(func(string) error { return nil })
	}
	return flow.SystemBrowser{}
}

// waitIndicator shows a spinner on stderr while the browser round trip runs.
type waitIndicator struct {
	s *spinner.Spinner
}

func newWaitIndicator(quiet bool) *waitIndicator {
	if quiet {
		return &waitIndicator{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " Waiting for authorization in the browser..."
	return &waitIndicator{s: s}
}

func (w *waitIndicator) Start() {
	if w.s != nil {
		w.s.Start()
	}
}

func (w *waitIndicator) Stop() {
	if w.s != nil {
		w.s.Stop()
	}
}
