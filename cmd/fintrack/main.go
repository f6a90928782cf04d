package main

import (
	"errors"
	"fmt"
	"os"

	"fintrack/internal/cli"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	// stdout carries command output; logs go to stderr
	logger := cli.NewLogger(cfg, applog.ComponentCLI, os.Stderr)

	ctx, stop := cli.SignalContext(logger)
	res := cli.InitBackend(ctx, logger, cfg)

	runner := &cli.Runner{
		Ledger:   res.Ledger,
		Out:      os.Stdout,
		Err:      os.Stderr,
		Currency: cfg.CurrencySymbol,
	}
	err := runner.Run(ctx, os.Args[1:])

	stop()
	if cerr := res.Cleanup(); cerr != nil {
		logger.Error("Backend cleanup failed", applog.FieldError, cerr)
	}

	switch {
	case err == nil:
		return
	case errors.Is(err, cli.ErrUsage):
		os.Exit(2)
	case errors.Is(err, core.ErrValidation):
		fmt.Fprintf(os.Stderr, "invalid input: %v\n", err)
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
