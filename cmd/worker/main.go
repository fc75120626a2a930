package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/ceo-dashboard/internal/app"
	"github.com/odyssey-erp/ceo-dashboard/internal/finance"
	"github.com/odyssey-erp/ceo-dashboard/internal/finance/archive"
	jobmetrics "github.com/odyssey-erp/ceo-dashboard/internal/jobs"
	"github.com/odyssey-erp/ceo-dashboard/internal/platform/cache"
	"github.com/odyssey-erp/ceo-dashboard/internal/platform/db"
	"github.com/odyssey-erp/ceo-dashboard/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil || redisClient == nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	var store jobs.SnapshotStore
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
		archiveStore := archive.NewStore(pool)
		if err := archiveStore.EnsureSchema(ctx); err != nil {
			logger.Error("ensure archive schema", slog.Any("error", err))
			os.Exit(1)
		}
		store = archiveStore
	} else {
		logger.Info("PG_DSN not set, yearly snapshots will not be archived")
	}

	src, err := app.NewFeedSource(cfg, nil)
	if err != nil {
		logger.Error("init feed source", slog.Any("error", err))
		os.Exit(1)
	}
	service := finance.NewService(src, finance.NewCache(redisClient, cfg.CacheTTL))
	refreshJob := jobs.NewFeedRefreshJob(service, store, logger, jobmetrics.NewMetrics(nil))

	refreshTask, err := jobs.NewFeedRefreshTask(jobs.FeedRefreshPayload{Reason: "scheduled"})
	if err != nil {
		logger.Error("build refresh task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskFeedRefresh, Handler: refreshJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.RefreshCron, Task: refreshTask},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
