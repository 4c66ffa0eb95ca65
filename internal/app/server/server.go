package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"perfreview/internal/domain/assessment"
	"perfreview/internal/domain/attendance"
	"perfreview/internal/domain/audit"
	"perfreview/internal/domain/auth"
	"perfreview/internal/domain/catalog"
	"perfreview/internal/domain/roles"
	"perfreview/internal/platform/config"
	"perfreview/internal/platform/db"
	"perfreview/internal/platform/metrics"
	"perfreview/internal/transport/http/api"
	assessmenthandler "perfreview/internal/transport/http/handlers/assessment"
	audithandler "perfreview/internal/transport/http/handlers/audit"
	"perfreview/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Logger  *zap.Logger
	Metrics *metrics.Collector
}

// New connects to the database, applies migrations when enabled and wires the router.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	for _, drift := range cat.CheckWeights() {
		logger.Warn("catalog weights do not sum to 100",
			zap.String("role", string(drift.Role)),
			zap.Float64("total", drift.Total),
			zap.Error(catalog.ErrWeightConfigDrift),
		)
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(pool, cfg.MigrationsDir, logger); err != nil {
			pool.Close()
			return nil, err
		}
	}

	app := &App{Config: cfg, DB: pool, Logger: logger, Metrics: metrics.New()}
	app.Router = app.routes(cat)
	return app, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

func (a *App) routes(cat *catalog.Catalog) http.Handler {
	api.SetLogger(a.Logger)

	store := assessment.NewStore(a.DB)
	service := assessment.NewService(store, store, roles.NewResolver(), attendance.NewStore(a.DB), cat, a.Logger)
	auditLog := audit.New(a.DB)
	handler := assessmenthandler.NewHandler(service, auth.StaticPermissions{}, auditLog, middleware.NewIdempotencyStore(a.DB), a.Metrics, a.Logger)
	handler.FinalizeLimit = middleware.RateLimit(a.Config.RateLimitPerMinute, time.Minute, middleware.WithLogger(a.Logger))

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(a.Logger))
	router.Use(middleware.Recoverer(a.Logger))
	router.Use(middleware.SecureHeaders(a.Config.IsProduction()))
	router.Use(middleware.BodyLimit(a.Config.MaxBodyBytes))
	if a.Config.MetricsEnabled {
		router.Use(a.Metrics.Middleware)
	}
	router.Use(middleware.Auth(a.Config.JWTSecret, a.Logger))

	if a.Config.MetricsEnabled {
		router.Method(http.MethodGet, "/metrics", a.Metrics.Handler())
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.DB.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	auditHandler := audithandler.NewHandler(auditLog, auth.StaticPermissions{}, a.Logger)
	router.Route("/api/v1", func(r chi.Router) {
		handler.RegisterRoutes(r)
		auditHandler.RegisterRoutes(r)
	})
	return router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	defer a.DB.Close()

	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("perfreview server listening", zap.String("addr", a.Config.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	a.Logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
