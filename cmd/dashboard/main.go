package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/road-accidents-dashboard/internal/adapter/csvfile"
	httpadapter "github.com/couchcryptid/road-accidents-dashboard/internal/adapter/http"
	"github.com/couchcryptid/road-accidents-dashboard/internal/config"
	"github.com/couchcryptid/road-accidents-dashboard/internal/dataset"
	"github.com/couchcryptid/road-accidents-dashboard/internal/observability"
	"github.com/couchcryptid/road-accidents-dashboard/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	loader := csvfile.NewLoader(cfg.DataDelimiter)
	store := dataset.NewStore(cfg.DataPath, loader, cfg.DatasetCacheTTL, logger, metrics)
	p := pipeline.New(store, cfg.TopParishes, logger, metrics)

	if cfg.MapboxEnabled {
		logger.Info("mapbox tiles enabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, store, httpadapter.Settings{
		MapZoom:      cfg.MapZoom,
		MapboxToken:  cfg.TileToken(),
		ExportPrefix: cfg.ExportPrefix,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Warm the store so the first page view does not pay for parsing. A
	// failure here is not fatal; readiness stays red until the file loads.
	if ds, err := store.GetOrLoad(ctx); err != nil {
		logger.Error("initial dataset load failed", "error", err)
	} else {
		logger.Info("dataset ready", "path", ds.Path, "records", ds.Len())
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
