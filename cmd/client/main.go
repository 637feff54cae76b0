package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/emergqr/emergqr/internal/buildinfo"
	"github.com/emergqr/emergqr/internal/client/cli"
	"github.com/emergqr/emergqr/internal/client/config"
	"github.com/emergqr/emergqr/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.NewText(os.Stderr, cfg.LogLevel)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "failed to start", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error(ctx, "client stopped", "error", err)
	}
}
