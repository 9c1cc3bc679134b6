// Command bigcalc evaluates arbitrary-precision integer expressions from the
// command line, in an interactive session or over HTTP.
package main

import (
	"context"
	"os"

	"github.com/agbru/bigcalc/internal/app"
	apperrors "github.com/agbru/bigcalc/internal/errors"
)

func main() {
	if app.HasVersionFlag(os.Args[1:]) {
		app.PrintVersion(os.Stdout)
		os.Exit(apperrors.ExitSuccess)
	}

	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			os.Exit(apperrors.ExitSuccess)
		}
		os.Exit(apperrors.ExitErrorConfig)
	}
	os.Exit(application.Run(context.Background(), os.Stdout))
}
