package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/mediiq/mediiq-api/pkg/logger"
	redisbroker "github.com/mediiq/mediiq-api/pkg/messaging/redis"
	"github.com/mediiq/mediiq-api/pkg/metrics"
	"github.com/mediiq/mediiq-api/pkg/worker"

	"github.com/mediiq/mediiq-api/internal/repository/postgres"
)

// workerConfig is read from the environment; the delivery worker runs
// standalone and does not carry the API's config file.
type workerConfig struct {
	DatabaseURL   string        `envconfig:"DATABASE_URL" required:"true"`
	RedisURL      string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	BatchSize     int           `envconfig:"BATCH_SIZE" default:"50"`
	PollInterval  time.Duration `envconfig:"POLL_INTERVAL" default:"2s"`
	RetryAttempts int           `envconfig:"RETRY_ATTEMPTS" default:"3"`
	RetryDelay    time.Duration `envconfig:"RETRY_DELAY" default:"1s"`
	HealthPort    int           `envconfig:"HEALTH_PORT" default:"8081"`
	RetainFor     time.Duration `envconfig:"RETAIN_PROCESSED_FOR" default:"168h"`
}

func main() {
	var cfg workerConfig
	if err := envconfig.Process("mediiq", &cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to load worker config")
	}

	appLogger := logger.NewLogger(nil).WithComponent("delivery-worker")

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{URL: cfg.RedisURL}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer broker.Close()

	outboxRepo := postgres.NewOutboxRepository(db)

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		worker.OutboxProcessorConfig{
			BatchSize:     cfg.BatchSize,
			PollInterval:  cfg.PollInterval,
			RetryAttempts: cfg.RetryAttempts,
			RetryDelay:    cfg.RetryDelay,
		},
		appLogger,
		metrics.New("mediiq_worker"),
	)

	setupHealthCheck(cfg.HealthPort, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("shutting down")
		cancel()
	}()

	go pruneProcessed(ctx, outboxRepo, cfg.RetainFor, appLogger)

	processor.Start(ctx)
}

func setupHealthCheck(port int, appLogger *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
			appLogger.Fatal(err, "health check server failed")
		}
	}()
}

// pruneProcessed trims processed events once an hour so the outbox
// table does not grow without bound.
func pruneProcessed(ctx context.Context, repo interface {
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}, retain time.Duration, appLogger *logger.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := repo.DeleteProcessedBefore(ctx, time.Now().Add(-retain))
			if err != nil {
				appLogger.Error(err, "failed to prune processed events")
				continue
			}
			if deleted > 0 {
				appLogger.Info("pruned processed events", "count", deleted)
			}
		}
	}
}
