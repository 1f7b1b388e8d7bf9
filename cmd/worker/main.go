package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"worklog/internal/config"
	"worklog/internal/mqhandler"
	"worklog/internal/repository"
	"worklog/internal/service"
	"worklog/pkg/db"
	"worklog/pkg/logger"
	"worklog/pkg/mq"
	"worklog/pkg/otel"
	"worklog/pkg/outbox"
	redisclient "worklog/pkg/redis"
	"worklog/pkg/util"
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

	log.Info("Starting worker service...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otelCfg := cfg.Otel
	otelCfg.ServiceName = otelCfg.ServiceName + "-worker"
	shutdownOtel, err := otel.Init(otelCfg, serviceVersion, log)
	if err != nil {
		log.Warn("OpenTelemetry init failed, continuing without export", zap.Error(err))
		shutdownOtel = func() {}
	}
	defer shutdownOtel()

	// Init DB
	pool, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer pool.Close()

	// Init Redis (optional dedup layer)
	var deduper mqhandler.Deduper
	if rdb, err := redisclient.NewRedisClient(ctx, cfg.Redis); err != nil {
		log.Warn("Redis unavailable, relying on idempotent inserts", zap.Error(err))
	} else {
		defer rdb.Close()
		deduper = util.NewDeduper(rdb, cfg.Outbox.DedupTTL, log)
	}

	// Init Outbox Dispatcher
	publisher, err := mq.NewPublisher(cfg.MQ.URL, log)
	if err != nil {
		log.Fatal("Failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	dispatcher := outbox.NewDispatcher(outbox.NewRepository(pool), publisher, log).
		WithInterval(cfg.Outbox.Interval).
		WithBatchSize(cfg.Outbox.BatchSize).
		WithMaxRetries(cfg.Outbox.MaxRetries)
	go dispatcher.Start(ctx)

	// Consumer for the project activity feed
	activityService := service.NewActivityService(repository.NewActivityRepository(pool), log)
	activityHandler := mqhandler.NewActivityHandler(activityService, deduper, log)

	router := mqhandler.NewRouter(log)
	for _, key := range activityHandler.RoutingKeys() {
		router.Register(key, activityHandler.Handle)
	}

	log.Info("Initializing activity consumer", zap.String("queue", cfg.Outbox.Queue))
	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.Outbox.Queue, router.RoutingKeys(), log)
	if err != nil {
		log.Fatal("Failed to init activity consumer", zap.Error(err))
	}
	defer consumer.Close()
	consumer.SetHandler(router.Handle)

	log.Info("Worker is ready to process messages")
	if err := consumer.StartConsuming(ctx); err != nil {
		log.Error("Activity consumer stopped", zap.Error(err))
	}
	log.Info("Worker stopped")
}
