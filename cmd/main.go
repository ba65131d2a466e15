package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/ui"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := runner.app().Run(ctx, os.Args)
	stop()

	if cerr := runner.Close(); cerr != nil {
		logger.Warn("failed to close database", "error", cerr)
	}

	switch {
	case err == nil:
	case errors.Is(err, ui.ErrAborted), errors.Is(err, context.Canceled):
		logger.Warn("aborted")
		os.Exit(130)
	case errors.Is(err, shared.ErrNotImplemented):
		logger.Warn("not implemented")
		os.Exit(0)
	default:
		logger.Fatalf("application error: %v", err)
	}
}
