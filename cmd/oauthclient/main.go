package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-oauth-client/oauthmodel"
)

// Exit codes returned by the CLI.
const (
	ExitCodeSuccess       = 0
	ExitCodeError         = 1
	ExitCodeConfiguration = 2
	ExitCodeAuthFailed    = 3
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, oauthmodel.ErrConfiguration):
		return ExitCodeConfiguration
	case errors.Is(err, oauthmodel.ErrAuthorization),
		errors.Is(err, oauthmodel.ErrProtocol),
		errors.Is(err, oauthmodel.ErrCallbackTimeout):
		return ExitCodeAuthFailed
	}
	return ExitCodeError
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(os.Stderr, myFigure.String())
}
