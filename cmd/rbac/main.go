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

	"github.com/mowems/rbac-system/internal/app"
	"github.com/mowems/rbac-system/internal/auth"
	"github.com/mowems/rbac-system/internal/observability"
	"github.com/mowems/rbac-system/internal/permissions"
	"github.com/mowems/rbac-system/internal/platform/cache"
	"github.com/mowems/rbac-system/internal/platform/db"
	"github.com/mowems/rbac-system/internal/rbac"
	"github.com/mowems/rbac-system/internal/roles"
	"github.com/mowems/rbac-system/internal/token"
	"github.com/mowems/rbac-system/internal/users"
	"github.com/mowems/rbac-system/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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
	codec := token.NewCodec(cfg.JWTSecret, cfg.JWTTTL)

	rbacRepo := rbac.NewRepository(dbpool)
	resolver := rbac.NewResolver(rbacRepo, store, cfg.UserCacheTTL)
	rbacService := rbac.NewService(rbacRepo, resolver)
	rbacHandler := rbac.NewHandler(logger, rbacService)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, store, resolver, cfg.UserCacheTTL)
	usersHandler := users.NewHandler(logger, usersService)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, resolver, usersService, codec)
	authHandler := auth.NewHandler(logger, authService)

	rolesRepo := roles.NewRepository(dbpool)
	rolesService := roles.NewService(rolesRepo, store, resolver, cfg.RoleCacheTTL)
	rolesHandler := roles.NewHandler(logger, rolesService)

	permsRepo := permissions.NewRepository(dbpool)
	permsService := permissions.NewService(permsRepo, store, cfg.RoleCacheTTL)
	permsHandler := permissions.NewHandler(logger, permsService)

	gate := rbac.Gate{Codec: codec, Subjects: usersService, Logger: logger}
	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Gate:               gate,
		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		RolesHandler:       rolesHandler,
		PermissionsHandler: permsHandler,
		RBACHandler:        rbacHandler,
		JobsHandler:        jobsHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
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
