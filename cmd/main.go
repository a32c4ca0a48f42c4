package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/WGhaly/pmprg-system-sub001/internal/adapters/http/api"
	"github.com/WGhaly/pmprg-system-sub001/internal/adapters/repository"
	app "github.com/WGhaly/pmprg-system-sub001/internal/app"
	"github.com/WGhaly/pmprg-system-sub001/internal/config"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/model"
	"github.com/WGhaly/pmprg-system-sub001/internal/domain/validation"
	"github.com/WGhaly/pmprg-system-sub001/pkg/logger"
	"github.com/WGhaly/pmprg-system-sub001/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := repository.Open(cfg.DBPath)
	if err != nil {
		log.Error(ctx, "failed to open store", logger.String("db_path", cfg.DBPath), logger.Error(err))
		return
	}
	defer store.Close()

	basis := validation.BasisStandardWeek
	if cfg.CapacityBasis == config.CapacityBasisResourceCapacity {
		basis = validation.BasisResourceCapacity
	}

	svc := app.New(
		app.WithStore(store),
		app.WithLogger(log),
		app.WithDefaultPreferences(model.Preferences{
			MaxUtilizationPct:      cfg.MaxUtilizationPct,
			AllowOverallocation:    cfg.AllowOverallocation,
			PrioritizeSkillLevel:   cfg.PrioritizeSkillLevel,
			PrioritizeAvailability: cfg.PrioritizeAvailability,
		}),
		app.WithCapacityBasis(basis),
		app.WithStandardWeeklyHours(cfg.StandardWeeklyHours),
	)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}
