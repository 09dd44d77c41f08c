package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giygas/treatment-plan-api/config"
	"github.com/giygas/treatment-plan-api/logging"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.InitLoggerWithOptions(cfg.LogDir, logging.ParseLevel(cfg.LogLevel), cfg.LogRetentionDays)
	defer logging.Close()

	app := newApplication(cfg)

	// Initial load must succeed before we accept traffic
	if err := app.scheduler.Start(); err != nil {
		logging.Error("Failed to start reference scheduler", "error", err)
		logging.Close()
		os.Exit(1)
	}
	defer app.scheduler.Stop()

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := app.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-quit:
	case err := <-serverErr:
		logging.Error("Server failed to start", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		logging.Error("Shutdown error", "error", err)
	}
}
