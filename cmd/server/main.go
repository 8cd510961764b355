package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nfrund/dungeonwave/internal/config"
	"github.com/nfrund/dungeonwave/internal/logging"
	"github.com/nfrund/dungeonwave/internal/server"
)

func main() {
	cfg := config.New()
	logger := logging.New()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create a new server instance.
	s, err := server.New(ctx, cfg, server.Options{Logger: logger})
	if err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	if err := s.Run(ctx); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}
