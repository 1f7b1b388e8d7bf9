package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"worklog/internal/cache"
	"worklog/internal/config"
	"worklog/internal/handler"
	"worklog/internal/httpserver"
	"worklog/internal/repository"
	"worklog/internal/service"
	"worklog/pkg/db"
	"worklog/pkg/logger"
	"worklog/pkg/mq"
	"worklog/pkg/otel"
	"worklog/pkg/outbox"
	redisclient "worklog/pkg/redis"
)

const serviceVersion = "1.0.0"

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger(cfg.Log.Level)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOtel, err := otel.Init(cfg.Otel, serviceVersion, log)
	if err != nil {
		log.Warn("OpenTelemetry init failed, continuing without export", zap.Error(err))
		shutdownOtel = func() {}
	}
	defer shutdownOtel()

	// Init DB
	if cfg.DB.AutoMigrate {
		if err := db.Migrate(cfg.DB.DSN(), log); err != nil {
			log.Fatal("Migration failed", zap.Error(err))
		}
	}
	pool, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer pool.Close()

	// Init Redis (optional: stats are served uncached without it)
	var statsCache service.StatsCache = service.NopStatsCache{}
	if rdb, err := redisclient.NewRedisClient(ctx, cfg.Redis); err != nil {
		log.Warn("Redis unavailable, stats cache disabled", zap.Error(err))
	} else {
		defer rdb.Close()
		statsCache = cache.NewStatsCache(rdb, cfg.Redis.StatsTTL, log)
	}

	// Init Repositories
	userRepo := repository.NewUserRepository(pool, log)
	projectRepo := repository.NewProjectRepository(pool, log)
	phaseRepo := repository.NewPhaseRepository(pool, log)
	workLogRepo := repository.NewWorkLogRepository(pool, log)
	activityRepo := repository.NewActivityRepository(pool)

	// Init Services
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.ExpiresIn, log)
	projectService := service.NewProjectService(projectRepo, activityRepo, statsCache, log)
	phaseService := service.NewPhaseService(phaseRepo, projectRepo, log)
	workLogService := service.NewWorkLogService(workLogRepo, projectRepo, phaseRepo, userRepo, statsCache, log)

	// Init Handlers
	handlers := httpserver.Handlers{
		Auth:    handler.NewAuthHandler(authService, log),
		Project: handler.NewProjectHandler(projectService, log),
		Phase:   handler.NewPhaseHandler(phaseService, log),
		WorkLog: handler.NewWorkLogHandler(workLogService, log),
	}

	// Outbox replay needs the broker; the admin routes are skipped without it
	if cfg.MQ.URL != "" {
		publisher, err := mq.NewPublisher(cfg.MQ.URL, log)
		if err != nil {
			log.Warn("MQ unavailable, admin replay disabled", zap.Error(err))
		} else {
			defer publisher.Close()
			replay := outbox.NewReplayService(outbox.NewRepository(pool), publisher, log)
			handlers.Admin = handler.NewAdminHandler(replay, log)
		}
	}

	limiter := httpserver.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)
	limiter.StartCleanup(time.Minute, ctx.Done())

	// Router
	router := httpserver.NewRouter(handlers, httpserver.Options{
		JWTSecret:      cfg.JWT.Secret,
		QueryTimeout:   cfg.DB.QueryTimeout,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AuthLimiter:    limiter,
		DB:             pool,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("Worklog API listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server start failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
