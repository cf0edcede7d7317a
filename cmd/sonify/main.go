package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/goes-sonify-etl/internal/adapter/goesnc"
	"github.com/couchcryptid/goes-sonify-etl/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/goes-sonify-etl/internal/adapter/kafka"
	"github.com/couchcryptid/goes-sonify-etl/internal/adapter/noaa"
	"github.com/couchcryptid/goes-sonify-etl/internal/config"
	"github.com/couchcryptid/goes-sonify-etl/internal/domain"
	"github.com/couchcryptid/goes-sonify-etl/internal/observability"
	"github.com/couchcryptid/goes-sonify-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	source := noaa.NewClient(cfg.Satellite, cfg.FetchTimeout, cfg.ScratchDir, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)

	job := pipeline.Job{
		Satellite:    cfg.Satellite,
		Product:      cfg.Product,
		Variable:     cfg.DataVariable,
		Target:       domain.Geo{Lat: cfg.TargetLat, Lon: cfg.TargetLon},
		NeighborStep: cfg.NeighborStep,
		WindowStart:  cfg.WindowStart,
		WindowEnd:    cfg.WindowEnd,
	}
	p := pipeline.New(source, goesnc.Decoder{}, writer, job, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Run the batch pipeline; the window is processed once.
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(ctx) }()

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("shutting down", "reason", ctx.Err())
	case err := <-errCh:
		if err != nil {
			logger.Error("pipeline error", "error", err)
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
	os.Exit(exitCode)
}
