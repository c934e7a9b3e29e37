package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"items-api/config"
)

func main() {
	cfg, err := config.Load()
	exitOnError(slog.Default(), "failed to load configuration", err)

	logger := newLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start server", "framework", cfg.Framework, "supported", frameworkList(), "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		logger.Error("server stopped", "error", err)
		app.Close()
		os.Exit(1)
	}
	logger.Info("server shut down")
}
