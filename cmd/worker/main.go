package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/mowems/rbac-system/internal/app"
	"github.com/mowems/rbac-system/internal/permissions"
	"github.com/mowems/rbac-system/internal/platform/cache"
	"github.com/mowems/rbac-system/internal/platform/db"
	"github.com/mowems/rbac-system/internal/rbac"
	"github.com/mowems/rbac-system/internal/roles"
	"github.com/mowems/rbac-system/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	store := cache.NewStore(redisClient, logger)

	resolver := rbac.NewResolver(rbac.NewRepository(pool), store, cfg.UserCacheTTL)
	rolesService := roles.NewService(roles.NewRepository(pool), store, resolver, cfg.RoleCacheTTL)
	permsService := permissions.NewService(permissions.NewRepository(pool), store, cfg.RoleCacheTTL)

	warmupJob := jobs.NewCacheWarmupJob(rolesService, permsService, logger, nil)

	warmupTask, err := jobs.NewCacheWarmupTask(jobs.CacheWarmupPayload{Roles: true, Permissions: true})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskCacheWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/30 * * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
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
