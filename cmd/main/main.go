package main

import (
	"context"
	"os/signal"
	"syscall"

	"eshop/mapper/internal/config"
	"eshop/mapper/internal/container"

	log "github.com/sirupsen/logrus"
)

func main() {
	log.Info("Starting category mapper...")

	// Load configuration using viper
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Info("Configuration loaded successfully")

	// Initialize container with all dependencies
	app, err := container.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer app.Close()

	// Interrupts stop the run but keep what was already mapped.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		if ctx.Err() != nil {
			log.Warnf("Run interrupted, partial results saved: %v", err)
			return
		}
		log.Fatalf("Application exited with error: %v", err)
	}

	log.Info("Application finished successfully")
}
