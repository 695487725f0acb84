package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shearbook/booking-api/internal/config"
	"github.com/shearbook/booking-api/internal/repository/postgres"
	"github.com/shearbook/booking-api/pkg/logger"
	"github.com/shearbook/booking-api/pkg/messaging/redis"
	"github.com/shearbook/booking-api/pkg/metrics"
	"github.com/shearbook/booking-api/pkg/worker"
)

// The worker drains booking events from the outbox table and publishes them
// to redis. It runs separately from the API so a broker outage never blocks
// request handling.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   3,
		RetryBackoff: 500 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create redis broker")
	}
	defer broker.Close()

	outboxRepo := postgres.NewOutboxRepository(db)

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		worker.OutboxProcessorConfig{
			BatchSize:     cfg.Outbox.BatchSize,
			PollInterval:  cfg.Outbox.PollInterval,
			RetryAttempts: 3,
			RetryDelay:    5 * time.Second,
			RetainFor:     7 * 24 * time.Hour,
		},
		appLogger,
		metrics.NewMetrics("booking_worker"),
	)

	setupHealthCheck(appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		appLogger.Info("Shutting down...")
		cancel()
	}()

	processor.Start(ctx)
}

func setupHealthCheck(appLogger *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			appLogger.Fatal(err, "Health check server failed")
		}
	}()
}
