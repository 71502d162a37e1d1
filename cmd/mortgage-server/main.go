package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iwvelando/mortgage-calculator/internal/calculator"
	"github.com/iwvelando/mortgage-calculator/internal/logging"
	"github.com/iwvelando/mortgage-calculator/internal/server"
	"github.com/iwvelando/mortgage-calculator/internal/storage"
	"github.com/iwvelando/mortgage-calculator/internal/tracing"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	envFile := flag.String("env-file", ".env", "optional .env file loaded before reading the environment")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// A missing .env file is normal outside development.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Printf("{\"op\": \"main\", \"level\": \"warn\", \"msg\": \"failed to load %s\", \"error\": \"%v\"}\n", *envFile, err)
	}

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}
	cfg.ApplyEnv(os.LookupEnv)

	logger, err := logging.New(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx := context.Background()

	shutdownTracing, err := tracing.Init(ctx, logger, cfg.Tracing.ServiceName, version, cfg.Tracing.Endpoint)
	if err != nil {
		logger.Fatal("failed to initialize tracing", zap.String("op", "main"), zap.Error(err))
	}

	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	store, closeStore, err := storage.Open(startCtx, cfg.Storage, logger)
	cancel()
	if err != nil {
		logger.Fatal("failed to open storage",
			zap.String("op", "main"),
			zap.String("backend", cfg.Storage.Backend),
			zap.Error(err),
		)
	}
	defer closeStore()

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      server.NewHandler(logger, calculator.NewService(logger), store, cfg.UploadSizeBytes(), version),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("mortgage calculator listening",
			zap.String("op", "main"),
			zap.String("address", cfg.Address),
			zap.String("storage", cfg.Storage.Backend),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.String("op", "main"), zap.Error(err))
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancelShutdown := context.WithTimeout(ctx, 5*time.Second)
	defer cancelShutdown()

	logger.Info("shutting down", zap.String("op", "main"))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.String("op", "main"), zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown error", zap.String("op", "main"), zap.Error(err))
	}
}
