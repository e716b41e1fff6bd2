package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/netdecker/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	if err := runner.app().Run(context.Background(), os.Args); err != nil {
		switch {
		case errors.Is(err, shared.ErrNotImplemented):
			logger.Warn("not implemented")
			os.Exit(0)
		case errors.Is(err, shared.ErrConfirmationRequired):
			logger.Warn("cancelled")
			os.Exit(1)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
