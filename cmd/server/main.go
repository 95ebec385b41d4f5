// Command server runs the blog.
//
// Configuration comes from the environment and an optional .env file; see
// package config for the variables. Only SESSION_SECRET is required:
//
//	SESSION_SECRET=$(openssl rand -hex 32) go run ./cmd/server
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/bloghub/internal/config"
	"github.com/sakif/bloghub/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	if cfg.AdminKey == "" {
		logger.Warn("ADMIN_KEY not set, the admin JSON endpoints refuse every request")
	}

	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", dbDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
