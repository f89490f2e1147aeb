// Package main is the entry point for the Watchdeck stock alert deck.
// The application holds alerts, a bounded notification feed, stock groups
// and preferences, persists them locally, and drives the toast lifecycle
// that surfaces incoming notifications on the lock screen.
//
// Architecture:
// - Domain layer is pure (no infrastructure dependencies)
// - Dependency injection via DI container
// - Repository pattern for the persisted state blob
// - HTTP handlers plus a WebSocket event stream for the screens
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/watchdeck/internal/config"
	"github.com/aristath/watchdeck/internal/di"
	"github.com/aristath/watchdeck/internal/server"
	"github.com/aristath/watchdeck/pkg/logger"
)

// main orchestrates the startup sequence:
// 1. Load configuration from environment variables
// 2. Initialize logging
// 3. Wire all dependencies via the DI container (database, store, services)
// 4. Start the HTTP server
// 5. Wait for a shutdown signal and stop everything gracefully
func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Msg("Starting Watchdeck")

	container, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	srv := server.New(server.Config{
		Port:        cfg.Port,
		DevMode:     cfg.DevMode,
		Log:         log,
		Config:      cfg,
		Store:       container.Store,
		Toast:       container.Toast,
		Persistence: container.Persistence,
		EventBus:    container.EventBus,
	})

	// Start server in goroutine so the main thread can wait on signals
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// The HTTP server gets up to 10 seconds to finish in-flight requests
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stops the toast controller and digest scheduler, then closes the database
	if err := container.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing container")
	}

	log.Info().Msg("Server stopped")
}
