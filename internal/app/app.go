package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"salespulse/internal/analytics"
	"salespulse/internal/config"
	"salespulse/internal/dataset"
	apierrors "salespulse/internal/errors"
	"salespulse/internal/infrastructure"
	"salespulse/internal/middleware"
	"salespulse/internal/services"
	transporthttp "salespulse/internal/transport/http"
)

// Application wires configuration, observability, the dataset store and
// the HTTP transport into a runnable server.
type Application struct {
	config       *config.Config
	logger       *slog.Logger
	otel         *infrastructure.OTelProviders
	metrics      *infrastructure.BusinessMetrics
	store        *dataset.Store
	dataService  *services.DataService
	errorHandler *apierrors.ErrorHandler
	router       chi.Router
	server       *http.Server
}

// New builds the application from configuration.
func New(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	store := dataset.NewStore(cfg.Archives.Part1, cfg.Archives.Part2, logger, metrics.StoreMetrics())

	analyzer := analytics.NewAnalyzer(analytics.Config{
		TopFamilies:   cfg.Analytics.TopFamilies,
		TopStores:     cfg.Analytics.TopStores,
		TopStates:     cfg.Analytics.TopStates,
		RollingWindow: cfg.Analytics.RollingWindow,
	}, logger)

	dataService := services.NewDataService(store, analyzer, logger)

	includeStack := os.Getenv("ENVIRONMENT") == "development"
	errorHandler := apierrors.NewErrorHandler(logger, includeStack)

	a := &Application{
		config:       cfg,
		logger:       logger,
		otel:         otelProviders,
		metrics:      metrics,
		store:        store,
		dataService:  dataService,
		errorHandler: errorHandler,
	}
	a.router = a.buildRouter()
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      a.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return a, nil
}

func (a *Application) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewHTTPMetrics(a.metrics).Handler)
	r.Use(middleware.StructuredLogger(a.logger))
	r.Use(middleware.Recoverer(a.logger))
	r.Use(render.SetContentType(render.ContentTypeJSON))

	if a.config.Security.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(
			a.config.Security.RateLimit.RPS,
			a.config.Security.RateLimit.Burst,
			a.logger,
		)
		r.Use(limiter.Handler)
	}

	dataHandler := transporthttp.NewDataHandler(a.dataService, a.errorHandler)
	healthHandler := transporthttp.NewHealthHandler(a.dataService, infrastructure.ServiceVersion)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/data", dataHandler.Routes())
		r.Mount("/health", healthHandler.Routes())
	})

	if a.otel.PrometheusHTTP != nil {
		r.Handle("/metrics", a.otel.PrometheusHTTP)
	}

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	return r
}

// Router exposes the HTTP handler, mainly for tests.
func (a *Application) Router() http.Handler {
	return a.router
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	// Warm the dataset cache before accepting traffic. A failure here is
	// logged, not fatal: readiness stays 503 and a later request retries
	// once the archives are fixed.
	warmCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	if _, err := a.store.Dataset(warmCtx); err != nil {
		a.logger.WarnContext(ctx, "dataset warm-up failed, serving degraded",
			slog.String("error", err.Error()))
	}
	cancel()

	errCh := make(chan error, 1)
	go func() {
		a.logger.InfoContext(ctx, "http server starting",
			slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	if err := a.otel.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("observability shutdown failed", slog.String("error", err.Error()))
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}

	a.logger.Info("shutdown complete")
	return nil
}
