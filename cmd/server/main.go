package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"customer-feedback-hub/backend/internal/repository"
	"customer-feedback-hub/backend/pkg/config"
	"customer-feedback-hub/backend/pkg/di"
	"customer-feedback-hub/backend/pkg/grpchealth"
	"customer-feedback-hub/backend/pkg/logger"
	"customer-feedback-hub/backend/pkg/router"
	"customer-feedback-hub/backend/pkg/secrets"
	"customer-feedback-hub/backend/shared/observability"
)

const serviceName = "customer-feedback-hub"

func main() {
	// Loads .env before anything reads the environment
	cfg := config.New()

	// Initialize structured logger
	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"

	log := logger.New(logConfig)
	logger.SetGlobal(log)

	log.Info("Starting application", "version", cfg.Server.Version, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := secrets.Init(secrets.VaultConfig{
		Enabled:     cfg.Vault.Enabled,
		Address:     cfg.Vault.Address,
		Token:       cfg.Vault.Token,
		Namespace:   cfg.Vault.Namespace,
		SecretsPath: cfg.Vault.SecretsPath,
	}, log); err != nil {
		log.LogError(err, "Failed to initialize secrets manager")
		os.Exit(1)
	}

	var shutdowns []observability.ShutdownFunc
	if cfg.Observability.TracingEnabled {
		shutdown, err := observability.SetupTracing(serviceName, cfg.Server.Version, os.Stdout)
		if err != nil {
			log.LogError(err, "Failed to initialize tracing")
		} else {
			shutdowns = append(shutdowns, shutdown)
		}
	}
	if cfg.Observability.MetricsEnabled {
		shutdown, err := observability.SetupMetrics(serviceName, cfg.Server.Version)
		if err != nil {
			log.LogError(err, "Failed to initialize otel metrics")
		} else {
			shutdowns = append(shutdowns, shutdown)
		}
	}

	// Initialize database
	db, err := config.NewDB(ctx, cfg)
	if err != nil {
		log.LogError(err, "Failed to initialize database", "driver", cfg.Database.Driver)
		os.Exit(1)
	}

	// Auto-migrate the schema
	if err := repository.Migrate(db); err != nil {
		log.LogError(err, "Failed to migrate database")
		os.Exit(1)
	}

	// Initialize dependency injection container
	container, err := di.New(db, cfg, di.Options{Logger: log})
	if err != nil {
		log.LogError(err, "Failed to initialize dependency container")
		os.Exit(1)
	}

	// Initialize and setup router
	r := router.New(container, cfg)
	r.SetupRoutes()

	container.StartBackground(ctx)
	r.StartBackground(ctx)

	if cfg.Server.GRPCPort != "" {
		grpcServer := grpchealth.New(log)
		container.Health.OnChange(grpcServer.SetServing)
		go func() {
			if err := grpcServer.ListenAndServe(ctx, cfg.Server.GRPCPort); err != nil {
				log.LogError(err, "gRPC health server failed", "port", cfg.Server.GRPCPort)
			}
		}()
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r.Engine,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	// Start the server in a goroutine
	go func() {
		log.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.LogError(err, "Server failed to start")
			stop()
		}
	}()

	// Block until we receive a signal
	<-ctx.Done()
	log.Info("Shutting down server...")

	// Create a deadline to wait for
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown the server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.LogError(err, "Server forced to shutdown")
	}

	if err := container.Close(); err != nil {
		log.LogError(err, "Failed to close cache")
	}
	if err := config.CloseDB(db); err != nil {
		log.LogError(err, "Failed to close database")
	}
	for _, shutdown := range shutdowns {
		if err := shutdown(shutdownCtx); err != nil {
			log.LogError(err, "Failed to flush telemetry")
		}
	}

	log.Info("Server exited gracefully")
}
