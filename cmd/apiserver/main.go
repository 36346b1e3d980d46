// API server entry point for MRM billing.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MRM-Billing/internal/bootstrap"
	"github.com/turtacn/MRM-Billing/internal/config"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/MRM-Billing/internal/interfaces/http"
	"github.com/turtacn/MRM-Billing/internal/interfaces/http/handlers"
	"github.com/turtacn/MRM-Billing/internal/interfaces/http/middleware"
)

// Build-time variables injected via ldflags.
var version = "dev"

const (
	defaultConfigPath = "configs/config.yaml"
	startupTimeout    = 30 * time.Second

	// Per client IP.
	rateLimitPerSecond = 20
	rateLimitBurst     = 40
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file (empty: environment only)")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	if err := run(*configPath, *httpPort); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, httpPort int) error {
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "warning: %s not found, using environment configuration\n", configPath)
			configPath = ""
		}
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if httpPort > 0 {
		cfg.Server.Port = httpPort
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting MRM billing API server",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port),
		logging.String("settings_source", cfg.Billing.SettingsSource))

	startCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	rt, err := bootstrap.New(startCtx, cfg, logger)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to initialize runtime: %w", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Error("failed to close runtime", logging.Err(err))
		}
	}()

	if configPath != "" {
		err := config.Watch(configPath, func(next *config.Config) {
			if err := rt.ReloadSettings(context.Background(), next); err != nil {
				logger.Error("failed to reload billing settings", logging.Err(err))
			}
		}, func(err error) {
			logger.Warn("ignoring invalid configuration change", logging.Err(err))
		})
		if err != nil {
			logger.Warn("configuration hot reload disabled", logging.Err(err))
		}
	}

	gin.SetMode(cfg.Server.Mode)

	limiter := middleware.NewTokenBucketLimiter(rateLimitPerSecond, rateLimitBurst, 5*time.Minute)
	defer limiter.Stop()

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.Server.AllowedOrigins

	checkers := make([]handlers.HealthChecker, 0, 3)
	for _, c := range rt.HealthChecks() {
		checkers = append(checkers, c)
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		BillingHandler:   handlers.NewBillingHandler(rt.Billing, logger.Named("http")),
		ReportHandler:    handlers.NewReportHandler(rt.Billing, rt.Exports, logger.Named("http")),
		ClientHandler:    handlers.NewClientHandler(rt.Clients, logger.Named("http")),
		HealthHandler:    handlers.NewHealthHandler(version, rt.Metrics, checkers...),
		CORS:             &cors,
		RateLimit:        limiter,
		Logger:           logger,
		Metrics:          rt.Metrics,
		MetricsCollector: rt.Collector,
	})
	srv := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", logging.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}

	if err := srv.Stop(context.Background()); err != nil {
		logger.Error("HTTP server shutdown error", logging.Err(err))
	}
	logger.Info("MRM billing API server stopped")
	return nil
}

//Personal.AI order the ending
