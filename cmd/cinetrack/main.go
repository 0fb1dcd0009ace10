package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cinetrack/cinetrack/internal/config"
	"github.com/cinetrack/cinetrack/internal/database"
	"github.com/cinetrack/cinetrack/internal/logger"
	"github.com/cinetrack/cinetrack/internal/server"
)

func main() {
	fmt.Println("=====================================")
	fmt.Println("  CineTrack - Content Platform Core  ")
	fmt.Println("=====================================")

	// Initialize configuration system first
	configPath := os.Getenv("CINETRACK_CONFIG_PATH")
	if configPath == "" {
		if _, err := os.Stat("./cinetrack.yaml"); err == nil {
			configPath = "./cinetrack.yaml"
		}
	}

	if err := config.Load(configPath); err != nil {
		log.Printf("Warning: failed to load configuration from %s: %v", configPath, err)
		log.Printf("Using default configuration")
	} else if configPath != "" {
		log.Printf("Configuration loaded from: %s", configPath)
	} else {
		log.Printf("Using default configuration")
	}

	cfg := config.Get()
	logger.SetLevelFromString(cfg.Logging.Level)

	// Initialize database
	if err := database.Initialize(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Watch the config file so edits apply without a restart
	watcher, err := config.NewFileWatcher(config.GetConfigManager())
	if err != nil {
		log.Printf("Warning: config hot reload unavailable: %v", err)
	} else {
		if err := watcher.Start(); err != nil {
			log.Printf("Warning: config hot reload unavailable: %v", err)
		}
		defer watcher.Stop()
	}

	// Setup router with all modules
	r, err := server.SetupRouter()
	if err != nil {
		log.Fatalf("Failed to set up router: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\nShutting down gracefully...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		cancel()
	}()

	log.Printf("Starting CineTrack server on %s:%d", cfg.Server.Host, cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}

	<-ctx.Done()
	log.Println("Server shutdown complete")
}
