package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"prsboot/internal"
	"prsboot/internal/api"
	"prsboot/internal/config"
	"prsboot/internal/container"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.DefaultLogger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create dependency injection container
	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	if err := appContainer.Connect(ctx); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	server := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           api.NewServer(appContainer.BootstrapService(), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting prsboot API on %s (results file %s)", server.Addr, appConfig.Output.ResultsFile)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed: %v", err)
	}
}
