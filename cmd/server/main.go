package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"whoami/internal/app"
	"whoami/internal/config"
	httpTransport "whoami/internal/transport/http"
	"whoami/internal/words"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Set up logger
	var logger *slog.Logger
	logOpts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	if cfg.Logging.Format == "json" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, logOpts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, logOpts))
	}

	slog.SetDefault(logger)

	logger.Info("starting whoami game server",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"wordSource", cfg.Words.Source,
	)

	// Open the dictionary
	src, closer, err := openWordSource(cfg.Words)
	if err != nil {
		logger.Error("failed to open word source", "error", err)
		os.Exit(1)
	}
	defer closer.Close()

	// Create game hub
	hub := app.NewGameHub(src, app.Options{
		RoomCodeLength: cfg.Game.RoomCodeLength,
		StaleTimeout:   cfg.Game.StaleRoomTimeout,
	}, logger)
	defer hub.Close()

	// Create HTTP server
	server := httpTransport.NewServer(cfg, hub, logger)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

// openWordSource builds the configured dictionary. Redis and Postgres are
// loaded from the catalog first when seeding is requested.
func openWordSource(cfg config.WordsConfig) (words.Source, io.Closer, error) {
	catalog, err := words.NewCatalog(cfg.CatalogFile)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.Source {
	case config.WordSourceRedis:
		rs, err := words.NewRedisSource(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Seed {
			if err := rs.Seed(ctx, catalog); err != nil {
				rs.Close()
				return nil, nil, fmt.Errorf("seed redis: %w", err)
			}
		}
		return rs, rs, nil

	case config.WordSourcePostgres:
		ps, err := words.NewPostgresSource(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := ps.EnsureSchema(ctx); err != nil {
			ps.Close()
			return nil, nil, err
		}
		if cfg.Seed {
			if err := ps.Seed(ctx, catalog); err != nil {
				ps.Close()
				return nil, nil, fmt.Errorf("seed postgres: %w", err)
			}
		}
		return ps, ps, nil

	default:
		return catalog, io.NopCloser(nil), nil
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
