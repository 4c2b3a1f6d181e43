// Package server wires the routes and runs the HTTP server.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/robbertj85/parkeerplaatsen/internal/api"
	"github.com/robbertj85/parkeerplaatsen/internal/core/config"
	"github.com/robbertj85/parkeerplaatsen/internal/core/health"
	"github.com/robbertj85/parkeerplaatsen/internal/core/middleware"
	"github.com/robbertj85/parkeerplaatsen/internal/provinces"
)

// Run sets up http and starts serving until ctx is canceled.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, zl zerolog.Logger, h *api.Handler) error {
	r := chi.NewRouter()
	r.Use(middleware.Recover())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS())

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(h))
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Get("/facilities", h.Facilities)
	r.Get("/stats", h.Stats)
	r.Get("/stats/municipalities", h.MunicipalityStats)
	r.Get("/layers", h.LayerCatalog)
	r.Get("/layers/{city}", h.Layer)
	r.Get("/provinces/{name}", provinces.Handler(zl, cfg.ProvinceDir))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
