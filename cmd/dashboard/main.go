package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/ceo-dashboard/internal/app"
	"github.com/odyssey-erp/ceo-dashboard/internal/finance"
	financehttp "github.com/odyssey-erp/ceo-dashboard/internal/finance/http"
	"github.com/odyssey-erp/ceo-dashboard/internal/observability"
	"github.com/odyssey-erp/ceo-dashboard/internal/platform/cache"
	"github.com/odyssey-erp/ceo-dashboard/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	metrics := observability.NewMetrics()

	src, err := app.NewFeedSource(cfg, metrics)
	if err != nil {
		logger.Error("init feed source", slog.Any("error", err))
		os.Exit(1)
	}

	opts := financehttp.Options{
		Policy:         cfg.ZoneRowPolicy(),
		Locale:         cfg.Locale(),
		RequestTimeout: cfg.AppRequestTimeout,
		ExportLimit:    cfg.ExportRateLimit,
		Observer:       metrics,
	}
	readiness := map[string]app.Pinger{}

	var feedCache *finance.Cache
	var jobHandler *jobs.Handler
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, serving without cache", slog.Any("error", err))
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		feedCache = finance.NewCache(redisClient, cfg.CacheTTL)
		opts.Invalidator = feedCache
		readiness["redis"] = cache.Checker{Client: redisClient}

		go func() {
			if err := feedCache.ListenForInvalidation(ctx, finance.BumpChannel); err != nil && ctx.Err() == nil {
				logger.Warn("cache invalidation listener stopped", slog.Any("error", err))
			}
		}()

		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
		queue := jobs.NewClient(redisOpts)
		defer queue.Close()
		opts.Queue = queue

		inspector := asynq.NewInspector(redisOpts)
		defer inspector.Close()
		jobHandler = jobs.NewHandler(inspector, logger)
	}

	service := finance.NewService(src, feedCache)
	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		FinanceHandler: financehttp.NewHandler(logger, service, opts),
		JobHandler:     jobHandler,
		Metrics:        metrics,
		Readiness:      readiness,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.Bool("static_feed", cfg.FeedStatic))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
