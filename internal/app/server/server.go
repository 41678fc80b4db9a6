package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"staffclock/internal/domain/audit"
	"staffclock/internal/domain/core"
	"staffclock/internal/domain/inquiries"
	"staffclock/internal/domain/logimport"
	"staffclock/internal/domain/payments"
	"staffclock/internal/domain/payout"
	"staffclock/internal/domain/timesheet"
	"staffclock/internal/platform/config"
	"staffclock/internal/platform/db"
	"staffclock/internal/platform/metrics"
	audithandler "staffclock/internal/transport/http/handlers/audit"
	corehandler "staffclock/internal/transport/http/handlers/core"
	inquirieshandler "staffclock/internal/transport/http/handlers/inquiries"
	paymentshandler "staffclock/internal/transport/http/handlers/payments"
	payouthandler "staffclock/internal/transport/http/handlers/payout"
	timesheethandler "staffclock/internal/transport/http/handlers/timesheet"
	"staffclock/internal/transport/http/middleware"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	Config  config.Config
	DB      *db.Pool
	Metrics *metrics.Collector
	Router  http.Handler
}

// Run loads configuration, prepares the database and serves until ctx is
// cancelled, then drains in-flight requests.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(newLogger(cfg))
	if err := cfg.Validate(); err != nil {
		return err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			return err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			return err
		}
	}

	app, err := New(cfg, pool)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("staffclock listening", "addr", cfg.Addr, "env", cfg.Environment, "timezone", cfg.Timezone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// New wires every service and handler onto a router.
func New(cfg config.Config, pool *db.Pool) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	// payAmount and payRate go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	employees := core.NewService(core.NewStore(pool))
	auditSvc := audit.New(pool)
	idem := middleware.NewIdempotencyStore(pool)

	timesheetSvc := timesheet.NewService(timesheet.NewStore(pool), employees, loc,
		timesheet.WithMetrics(collector),
		timesheet.WithMaxImportRows(cfg.MaxImportRows),
	)
	paymentStore := payments.NewStore(pool)
	paymentsSvc := payments.NewService(paymentStore, collector)
	payoutSvc := payout.NewService(paymentStore, payout.WithMetrics(collector))
	inquiriesSvc := inquiries.NewService(inquiries.NewStore(pool))

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.MutationRateLimit(cfg.RateLimit, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if collector != nil {
		router.Handle("/metrics", collector.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		corehandler.NewHandler(employees).RegisterRoutes(r)
		timesheethandler.NewHandler(timesheetSvc, logimport.NewNormalizer(cfg.ImportDateOrder, slog.Default()), employees, auditSvc, idem, timesheethandler.Config{
			DefaultPageSize: cfg.DefaultPageSize,
			MaxPageSize:     cfg.MaxPageSize,
			MaxUploadBytes:  cfg.MaxUploadBytes,
		}).RegisterRoutes(r)
		paymentshandler.NewHandler(paymentsSvc, employees, auditSvc).RegisterRoutes(r)
		payouthandler.NewHandler(payoutSvc, employees, auditSvc, idem).RegisterRoutes(r)
		inquirieshandler.NewHandler(inquiriesSvc, auditSvc, cfg.DefaultPageSize, cfg.MaxPageSize).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc).RegisterRoutes(r)
	})

	return &App{Config: cfg, DB: pool, Metrics: collector, Router: router}, nil
}

func newLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(cfg.LogLevel)) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).With("service", "staffclock")
}
