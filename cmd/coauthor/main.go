package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.etcd.io/bbolt"

	"github.com/freema/coauthor/internal/config"
	"github.com/freema/coauthor/internal/github"
	"github.com/freema/coauthor/internal/lifecycle"
	"github.com/freema/coauthor/internal/logger"
	"github.com/freema/coauthor/internal/redisclient"
	"github.com/freema/coauthor/internal/server"
	"github.com/freema/coauthor/internal/store"
	"github.com/freema/coauthor/internal/tracing"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Println("coauthor", version)
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load config
	configPath := os.Getenv("COAUTHOR_CONFIG")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting coauthor", "version", version)

	// Setup tracing
	shutdownTracing, err := tracing.Setup(context.Background(), tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Endpoint:     cfg.Tracing.Endpoint,
		SamplingRate: cfg.Tracing.SamplingRate,
		Version:      version,
	})
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}

	// Open the roster store
	db, err := bbolt.Open(cfg.Store.Path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return fmt.Errorf("opening roster store %s: %w", cfg.Store.Path, err)
	}
	defer db.Close()
	rosterStore := store.NewBoltStore(db)
	slog.Info("roster store opened", "path", cfg.Store.Path)

	// Optional Redis (profile cache + rate limiter backend)
	var cache *redisclient.Client
	if cfg.Cache.URL != "" {
		cache, err = redisclient.New(cfg.Cache.URL, cfg.Cache.Prefix)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer cache.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = cache.Ping(pingCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
		slog.Info("redis connected", "url", cfg.Cache.URL)
	}

	// Profile resolver, optionally cache-backed
	var resolver github.Resolver = github.NewClient(github.ClientConfig{
		BaseURL: cfg.GitHub.BaseURL,
		Token:   cfg.GitHub.Token,
		Timeout: cfg.GitHub.Timeout,
	})
	if cfg.Cache.Enabled && cache != nil {
		resolver = github.NewCachingResolver(resolver, cache, cfg.Cache.TTL)
	}

	// Roster lifecycle controller
	controller := lifecycle.New(rosterStore, resolver, cfg.Roster.ExpiryDelay)

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	if err := controller.Start(appCtx); err != nil {
		return fmt.Errorf("resuming roster: %w", err)
	}

	// Create and start HTTP server
	srv := server.New(cfg, rosterStore, controller, cache, version)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown
	slog.Info("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	appCancel()       // Signal in-flight lookups to stop
	controller.Stop() // Wait for lookup goroutines to drain

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("tracing shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
