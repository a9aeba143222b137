// main.go - Entry point for the bina installer service.
//
// This file sets up the configuration, logging and the GitHub release source,
// and starts the HTTP server. It also handles graceful shutdown.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := SetupLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to setup logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Infow("Starting bina", "config_file", cfg.ConfigFileUsed, "github_api", cfg.GitHubAPI)
	if cfg.GitHubToken == "" {
		logger.Warn("No server GitHub token configured, anonymous API rate limits apply")
	}

	installerService := NewInstallerService(cfg, NewGitHubReleaseSource(cfg), logger)

	router := mux.NewRouter()
	SetupRoutes(router, installerService, cfg, logger)

	server := &http.Server{
		Addr:         cfg.APIServerAddress,
		Handler:      router,
		WriteTimeout: requestTimeout(cfg) + 15*time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infow("Starting API server", "address", cfg.APIServerAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("Server failed to start", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownDelay)*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatalw("Server shutdown failed", "error", err)
	}
	logger.Info("Server shutdown completed.")
}
