package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/lossdesk/lossdesk/internal/app"
	"github.com/lossdesk/lossdesk/internal/events"
	"github.com/lossdesk/lossdesk/internal/reports"
	"github.com/lossdesk/lossdesk/internal/settings"
	"github.com/lossdesk/lossdesk/jobs"
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

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	settingsService := settings.NewService(settings.NewRepository(pool), redisClient, 0)
	reportsCache := reports.NewCache(redisClient, cfg.DashboardCacheTTL)
	if err := reportsCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("reports cache subscribe", slog.Any("error", err))
	}

	eventsService := events.NewService(events.NewRepository(pool), nil, settingsService, nil, nil, nil)
	reportsService := reports.NewService(reports.NewRepository(pool), reportsCache, eventsService, settingsService)

	warmupJob := jobs.NewDashboardWarmupJob(reportsService, logger, nil)
	staleDraftJob := jobs.NewStaleDraftScanJob(pool, logger, nil)
	digestJob := jobs.NewExportDigestJob(pool, logger, nil)

	warmupTask, err := jobs.NewDashboardWarmupTask(jobs.DashboardWarmupPayload{Windows: []int{7, 30}})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}
	staleDraftTask, err := jobs.NewStaleDraftScanTask(jobs.StaleDraftScanPayload{MaxAgeDays: 3})
	if err != nil {
		logger.Error("build stale draft task", slog.Any("error", err))
		os.Exit(1)
	}
	digestTask, err := jobs.NewExportDigestTask(jobs.ExportDigestPayload{WindowHours: 24})
	if err != nil {
		logger.Error("build digest task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDashboardWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskStaleDraftScan, Handler: staleDraftJob.Handle},
			{Type: jobs.TaskExportDigest, Handler: digestJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "15 5 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 6 * * *", Task: staleDraftTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 7 * * *", Task: digestTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
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
