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

	"github.com/meridian-admin/meridian/internal/app"
	"github.com/meridian-admin/meridian/internal/appointments"
	"github.com/meridian-admin/meridian/internal/auth"
	"github.com/meridian-admin/meridian/internal/observability"
	"github.com/meridian-admin/meridian/internal/platform/cache"
	"github.com/meridian-admin/meridian/internal/platform/db"
	"github.com/meridian-admin/meridian/internal/rbac"
	"github.com/meridian-admin/meridian/internal/requests"
	"github.com/meridian-admin/meridian/internal/shared"
	"github.com/meridian-admin/meridian/internal/users"
	"github.com/meridian-admin/meridian/jobs"
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
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokenManager := auth.NewTokenManager(redisClient, cfg.TokenTTL)
	authMiddleware := auth.Middleware{Tokens: tokenManager, Logger: logger}
	authService := auth.NewService(auth.NewRepository(dbpool), tokenManager)
	authHandler := auth.NewHandler(logger, authService)

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(dbpool)

	rbacStore := rbac.NewPGStore(dbpool)
	resolver := rbac.NewResolver(logger)
	guard := rbac.Guard{Store: rbacStore, Resolver: resolver, Logger: logger, Metrics: metrics}
	permissionsHandler := rbac.NewPermissionsHandler(logger, rbacStore, guard)

	usersService := users.NewService(users.NewRepository(dbpool), auditLogger)
	usersHandler := users.NewHandler(logger, usersService, guard)

	requestsService := requests.NewService(requests.NewRepository(dbpool))
	requestsHandler := requests.NewHandler(logger, requestsService, guard)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	appointmentsService := appointments.NewService(appointments.NewRepository(dbpool), jobClient, logger)
	appointmentsHandler := appointments.NewHandler(logger, appointmentsService, guard)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		AuthMiddleware:      authMiddleware,
		AuthHandler:         authHandler,
		UsersHandler:        usersHandler,
		RequestsHandler:     requestsHandler,
		AppointmentsHandler: appointmentsHandler,
		PermissionsHandler:  permissionsHandler,
		JobHandler:          jobHandler,
		Metrics:             metrics,
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
