// Background worker for MRM billing. It consumes entry events from kafka,
// drops stale month summaries from redis and regenerates the month's CSV
// exports in object storage.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MRM-Billing/internal/bootstrap"
	"github.com/turtacn/MRM-Billing/internal/config"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MRM-Billing/internal/interfaces/http/handlers"
)

var version = "dev"

const (
	defaultWorkerConfigPath = "configs/config.yaml"
	defaultHealthPort       = 8081
	startupTimeout          = 30 * time.Second
	drainTimeout            = defaultHandlerTimeout + 30*time.Second
)

func main() {
	configPath := flag.String("config", defaultWorkerConfigPath, "path to configuration file (empty: environment only)")
	healthPort := flag.Int("health-port", defaultHealthPort, "port of the /healthz, /readyz and /metrics endpoints")
	ensureTopics := flag.Bool("ensure-topics", false, "create the billing topics if they do not exist")
	flag.Parse()

	if err := run(*configPath, *healthPort, *ensureTopics); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, healthPort int, ensureTopics bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if !cfg.Kafka.Enabled {
		return fmt.Errorf("kafka.enabled must be true to run the worker")
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	startCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	rt, err := bootstrap.New(startCtx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize runtime: %w", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Error("failed to close runtime", logging.Err(err))
		}
	}()

	if ensureTopics {
		if err := createTopics(startCtx, cfg, rt.Topics, logger); err != nil {
			return err
		}
	}

	refresher := newMonthRefresher(nil, nil, logger.Named("refresher"))
	if rt.Summaries != nil {
		refresher.summaries = rt.Summaries
	}
	if rt.Objects != nil {
		refresher.exports = rt.Exports
	} else {
		logger.Warn("minio disabled; entry events only invalidate cached summaries")
	}

	consumer, err := kafka.NewConsumer(kafka.NewConsumerConfig(cfg.Kafka, rt.Topics), logger.Named("consumer"))
	if err != nil {
		return fmt.Errorf("failed to create kafka consumer: %w", err)
	}
	consumer.Subscribe(rt.Topics.EntrySaved, refresher.Handle)
	consumer.Subscribe(rt.Topics.EntryDeleted, refresher.Handle)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	if err := consumer.Start(ctx); err != nil {
		return err
	}

	healthSrv := startHealthServer(healthPort, rt, logger)

	logger.Info("MRM billing worker started",
		logging.String("version", version),
		logging.String("saved_topic", rt.Topics.EntrySaved),
		logging.String("deleted_topic", rt.Topics.EntryDeleted))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("received shutdown signal", logging.String("signal", sig.String()))

	stop()
	done := make(chan error, 1)
	go func() { done <- consumer.Close() }()
	select {
	case err := <-done:
		if err != nil {
			logger.Error("kafka consumer close error", logging.Err(err))
		}
	case <-time.After(drainTimeout):
		logger.Warn("shutdown timeout exceeded, forcing exit")
	}

	consumed, processed, failed, deadLettered := consumer.Metrics()
	logger.Info("consumer totals",
		logging.Int64("consumed", consumed),
		logging.Int64("processed", processed),
		logging.Int64("failed", failed),
		logging.Int64("dead_lettered", deadLettered))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("health server shutdown error", logging.Err(err))
	}

	logger.Info("MRM billing worker stopped")
	return nil
}

func createTopics(ctx context.Context, cfg *config.Config, topics kafka.Topics, logger logging.Logger) error {
	tm, err := kafka.NewTopicManager(cfg.Kafka.Brokers, logger)
	if err != nil {
		return err
	}
	defer tm.Close()
	return tm.EnsureTopics(ctx, kafka.DefaultTopics(topics))
}

func startHealthServer(port int, rt *bootstrap.Runtime, logger logging.Logger) *http.Server {
	checkers := make([]handlers.HealthChecker, 0, 3)
	for _, c := range rt.HealthChecks() {
		checkers = append(checkers, c)
	}
	health := handlers.NewHealthHandler(version, rt.Metrics, checkers...)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)
	if rt.Collector != nil {
		r.GET("/metrics", gin.WrapH(rt.Collector.Handler()))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("health server listening", logging.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server error", logging.Err(err))
		}
	}()
	return srv
}

//Personal.AI order the ending
