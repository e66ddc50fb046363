package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ecommerce-dashboard/internal/config"
	"ecommerce-dashboard/internal/dataset"
	"ecommerce-dashboard/internal/observability"
	"ecommerce-dashboard/internal/server"
	"ecommerce-dashboard/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", observability.ServiceVersion,
		"config", cfg,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("application failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}

// run loads the dataset and serves the dashboard until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	tp, err := observability.NewTracerProvider(cfg.Tracing)
	if err != nil {
		return err
	}
	metrics := observability.NewMetrics()

	analytics := services.NewAnalytics(metrics)
	loadCtx, cancel := context.WithTimeout(ctx, cfg.Dataset.LoadTimeout)
	defer cancel()

	if err := analytics.LoadFromCSV(loadCtx, cfg.Dataset.CSVFile, dataset.Options{Workers: cfg.Dataset.Workers}); err != nil {
		// Spans from the failed load still get flushed.
		_ = tp.Shutdown(context.WithoutCancel(ctx))
		return fmt.Errorf("load dataset: %w", err)
	}

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      server.NewServer(cfg, analytics, metrics, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)
	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("flushing traces")
		return tp.Shutdown(ctx)
	})

	return gracefulServer.ListenAndServe(ctx)
}
