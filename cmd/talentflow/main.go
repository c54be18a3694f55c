package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/talentflow/internal/application"
	"github.com/example/talentflow/internal/config"
	"github.com/example/talentflow/internal/httpapi"
	"github.com/example/talentflow/internal/metrics"
	"github.com/example/talentflow/internal/persistence/sqlite"
	"github.com/example/talentflow/internal/persistence/sqlite/migration"
	"github.com/example/talentflow/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	manager := migration.NewManager(pool.DB(), migration.Steps(), logger)
	if err := manager.Run(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	if cfg.Seed {
		seeder := seed.NewSeeder(pool, idGenerator, now, logger)
		if err := seeder.Run(context.Background()); err != nil {
			logger.Error("failed to seed storage", "error", err)
			os.Exit(1)
		}
	}

	jobRepo := sqlite.NewJobRepository(pool)
	candidateRepo := sqlite.NewCandidateRepository(pool)
	assessmentRepo := sqlite.NewAssessmentRepository(pool)
	userRepo := sqlite.NewUserRepository(pool)
	notificationRepo := sqlite.NewNotificationRepository(pool)

	notificationService := application.NewNotificationService(notificationRepo, userRepo, idGenerator, now, logger)
	jobService := application.NewJobService(jobRepo, idGenerator, now, logger)
	candidateService := application.NewCandidateService(candidateRepo, jobRepo, notificationService, idGenerator, now, logger)
	assessmentService, err := application.NewAssessmentService(assessmentRepo, candidateRepo, jobRepo, idGenerator, now, logger)
	if err != nil {
		logger.Error("failed to build assessment service", "error", err)
		os.Exit(1)
	}
	authService := application.NewAuthService(userRepo, application.DefaultSessionTTL, idGenerator, now, logger)

	instruments := metrics.New()
	injector := httpapi.NewFaultInjector(cfg.FaultsEnabled, cfg.FaultsSeed, nil, instruments, logger)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Jobs:           httpapi.NewJobHandler(jobService, logger),
		Candidates:     httpapi.NewCandidateHandler(candidateService, logger),
		Assessments:    httpapi.NewAssessmentHandler(assessmentService, logger),
		Auth:           httpapi.NewAuthHandler(authService, logger),
		Notifications:  httpapi.NewNotificationHandler(notificationService, logger),
		Faults:         injector,
		Metrics:        instruments,
		MetricsHandler: promhttp.HandlerFor(instruments.Registry, promhttp.HandlerOpts{}),
		Health:         healthHandler(pool),
		Middleware: []func(http.Handler) http.Handler{
			httpapi.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("talentflow API listening", "addr", server.Addr, "faults_enabled", cfg.FaultsEnabled)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func healthHandler(pool *sqlite.ConnectionPool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"success":true,"data":{"status":"ok"}}`))
	}
}
