package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/config"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/generation"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/geo"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/handler"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/identity"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/metrics"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/middleware"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/planner"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/repo"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/service"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/weather"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long:  "Run the HTTP API server. Configuration is read from environment variables.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// --- Logger -----------------------------------------------------------
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the ping below does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("database connection established")

	sessionRepo := repo.NewSessionRepo(pool)
	userRepo := repo.NewUserRepo(pool)

	// --- Metrics ----------------------------------------------------------
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// --- Services ---------------------------------------------------------
	outbound := &http.Client{Timeout: cfg.HTTPClientTimeout}

	ident := identity.New(userRepo, identity.Options{
		Secret:          []byte(cfg.JWTSecret),
		TTL:             cfg.TokenTTL,
		PasswordEnabled: cfg.PasswordAuthEnabled,
	}, logger.With("component", "identity"))

	provider, err := generation.NewProvider(cfg.Generation, outbound)
	if err != nil {
		return fmt.Errorf("generation provider: %w", err)
	}
	generator := generation.NewClient(provider, generation.WithLogger(logger.With("component", "generation")))
	wx := weather.New(cfg.WeatherBaseURL, outbound, logger.With("component", "weather"))

	sessions := service.NewSessionService(sessionRepo, logger.With("component", "sessions"))
	if err := sessions.VerifyIndex(ctx); err != nil {
		logger.Warn("session history index check failed; run `wanderai migrate up`", "error", err)
	}
	export := service.NewExportService(sessions, geo.NewLocator(logger.With("component", "geo")))

	plan := planner.New(generator, wx, sessions, logger.With("component", "planner"), planner.WithObserver(m))

	logger.Info("services ready",
		"generation_provider", provider.Name(),
		"generation_model", cfg.Generation.Model,
		"password_auth", cfg.PasswordAuthEnabled,
	)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Metrics →
	// Recoverer → CORS → body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(middleware.NewMetricsHandler(m))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srvHandler := handler.NewServer(ident, sessions, export, plan, logger)
	r.Mount("/", srvHandler.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Generation can take as long as the outbound timeout, so the write
	// timeout leaves room for it.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2*cfg.HTTPClientTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
