package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Arcano33sa/suitea33-sub002/api/routes"
	"github.com/Arcano33sa/suitea33-sub002/internal/cron"
	"github.com/Arcano33sa/suitea33-sub002/internal/dashboard"
	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/pkg/config"
	"github.com/Arcano33sa/suitea33-sub002/pkg/db"
	"github.com/Arcano33sa/suitea33-sub002/pkg/logger"
	"github.com/Arcano33sa/suitea33-sub002/pkg/metrics"
	"github.com/Arcano33sa/suitea33-sub002/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "dashboard"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "dashboard",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	dashMetrics := metrics.NewDashboardMetrics(reg)

	// A missing store is not fatal: the dashboard renders unavailable
	// sections until it comes back.
	acc := store.Open(context.Background(), cfg.DB, store.Options{
		ScanLimit: cfg.Dashboard.ScanLimit,
		Logger:    logg,
		Metrics:   dashMetrics,
	})
	defer func() {
		if err := acc.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	var redisClient *redis.Client
	var redisPinger db.Pinger
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Warn(logg.WithField(context.Background(), "error", err.Error()), "redis unavailable, blob sections will report unavailable")
			redisClient = nil
		}
		redisPinger = redisClient
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	svc := dashboard.New(dashboard.Deps{
		Accessor: acc,
		Blobs:    store.NewBlobs(redisClient, logg, dashMetrics),
		Config:   cfg.Dashboard,
		Logger:   logg,
		Metrics:  dashMetrics,
	})

	runner, err := newRunner(cfg, logg, reg, svc)
	if err != nil {
		logg.Error(context.Background(), "failed to create revalidation runner", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"database": acc.Available(),
		"redis":    redisClient != nil,
	})
	logg.Info(ctx, "starting dashboard server")

	go func() {
		if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "revalidation runner stopped unexpectedly", err)
		}
	}()

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, acc, redisPinger, reg, svc),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "dashboard server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
	logg.Info(ctx, "dashboard server shutting down gracefully")
}

func newRunner(cfg *config.Config, logg *logger.Logger, reg prometheus.Registerer, svc *dashboard.Service) (*cron.Service, error) {
	revalidate, err := cron.NewRevalidateJob(cron.RevalidateJobParams{Logger: logg, Dashboard: svc})
	if err != nil {
		return nil, err
	}
	focus, err := cron.NewFocusSyncJob(logg, svc)
	if err != nil {
		return nil, err
	}
	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(focus, revalidate),
		Lock:     cron.NewLocalLock(),
		Metrics:  metrics.NewCronJobMetrics(reg),
		Interval: cfg.Dashboard.RevalidateInterval,
	})
}
