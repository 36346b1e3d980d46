// Package bootstrap assembles the billing runtime from configuration. The API
// server, the worker and the mrm CLI all start from New.
package bootstrap

import (
	"context"
	stderrors "errors"
	"time"

	appbilling "github.com/turtacn/MRM-Billing/internal/application/billing"
	"github.com/turtacn/MRM-Billing/internal/application/reporting"
	"github.com/turtacn/MRM-Billing/internal/config"
	domainbilling "github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/internal/domain/client"
	"github.com/turtacn/MRM-Billing/internal/domain/settings"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/database/postgres"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/database/redis"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/storage/minio"
)

// exportLockTTL bounds how long a crashed worker can hold a month's exports.
const exportLockTTL = 3 * time.Minute

// Runtime owns every connection opened for one process. Optional backends
// (redis, kafka, minio) are nil when disabled in config.
type Runtime struct {
	Config    *config.Config
	Logger    logging.Logger
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics

	DB       *postgres.Connection
	Redis    *redis.Client
	Producer *kafka.Producer
	Objects  *minio.Client
	Topics   kafka.Topics

	Entries   domainbilling.EntryRepository
	Clients   client.Directory
	Settings  settings.Store
	Summaries *redis.SummaryCache
	Locks     redis.LockFactory

	Billing appbilling.Service
	Exports reporting.ExportService

	closers []func() error
}

// New opens postgres and every enabled backend, then wires the application
// services over them. On failure everything already opened is closed.
func New(ctx context.Context, cfg *config.Config, log logging.Logger) (rt *Runtime, err error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	rt = &Runtime{Config: cfg, Logger: log, Topics: kafka.NewTopics(cfg.Kafka.TopicPrefix)}
	defer func() {
		if err != nil {
			_ = rt.Close()
			rt = nil
		}
	}()

	if cfg.Metrics.Enabled {
		rt.Collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableGoMetrics:      true,
			EnableProcessMetrics: true,
		}, log)
		if err != nil {
			return rt, err
		}
		rt.Metrics = prometheus.NewAppMetrics(rt.Collector)
	}

	rt.DB, err = postgres.NewConnection(cfg.Database, log)
	if err != nil {
		return rt, err
	}
	rt.closers = append(rt.closers, rt.DB.Close)
	rt.Entries = repositories.NewEntryRepo(rt.DB, log)
	rt.Clients = repositories.NewClientRepo(rt.DB, log)

	var cache redis.Cache
	if cfg.Redis.Enabled {
		rt.Redis, err = redis.NewClient(cfg.Redis, log)
		if err != nil {
			return rt, err
		}
		rt.closers = append(rt.closers, rt.Redis.Close)
		cache = redis.NewRedisCache(rt.Redis, log,
			redis.WithPrefix(cfg.Redis.KeyPrefix),
			redis.WithDefaultTTL(cfg.Redis.DefaultTTL))
		rt.Summaries = redis.NewSummaryCache(cache, cfg.Billing.SummaryCacheTTL)
		rt.Locks = redis.NewLockFactory(rt.Redis, cfg.Redis.KeyPrefix, log)
	}

	rt.Settings, err = buildSettings(cfg, rt.DB, cache, log)
	if err != nil {
		return rt, err
	}

	var events appbilling.EventPublisher
	if cfg.Kafka.Enabled {
		rt.Producer, err = kafka.NewProducer(kafka.NewProducerConfig(cfg.Kafka), log)
		if err != nil {
			return rt, err
		}
		rt.closers = append(rt.closers, rt.Producer.Close)
		events = kafka.NewEntryEventPublisher(rt.Producer, rt.Topics)
	}

	var store reporting.ObjectStore
	if cfg.MinIO.Enabled {
		rt.Objects, err = minio.NewClient(ctx, cfg.MinIO, log)
		if err != nil {
			return rt, err
		}
		store = minio.NewObjectStore(rt.Objects, log)
	}

	deps := appbilling.Dependencies{
		Entries:  rt.Entries,
		Clients:  rt.Clients,
		Settings: rt.Settings,
		Policy:   Policy(cfg.Billing),
		Events:   events,
		Metrics:  rt.Metrics,
		Logger:   log.Named("billing"),
	}
	if rt.Summaries != nil {
		deps.Summaries = rt.Summaries
	}
	rt.Billing, err = appbilling.NewService(deps)
	if err != nil {
		return rt, err
	}

	rt.Exports, err = reporting.NewExportService(reporting.ExportDependencies{
		Entries:  rt.Entries,
		Clients:  rt.Clients,
		Settings: rt.Settings,
		Store:    store,
		Locks:    LockProvider(rt.Locks),
		Metrics:  rt.Metrics,
		Logger:   log.Named("exports"),
	})
	if err != nil {
		return rt, err
	}
	return rt, nil
}

// Close releases connections in reverse opening order.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return stderrors.Join(errs...)
}

// Policy picks the status transition policy configured for the billing section.
func Policy(cfg config.BillingConfig) domainbilling.TransitionPolicy {
	if cfg.EnforceStatusOrder {
		return domainbilling.ForwardOnly{}
	}
	return domainbilling.AnyTransition{}
}

// LockProvider adapts a redis lock factory to the export service. A nil
// factory yields a nil provider, which disables locking.
func LockProvider(f redis.LockFactory) reporting.LockProvider {
	if f == nil {
		return nil
	}
	return func(name string) reporting.Lock {
		return f.NewMutex(name, redis.WithLockTTL(exportLockTTL), redis.WithWatchdog(true))
	}
}

// buildSettings returns the settings store selected by billing.settings_source.
// Database settings are read through the cache when one is available.
func buildSettings(cfg *config.Config, db *postgres.Connection, cache redis.Cache, log logging.Logger) (settings.Store, error) {
	if cfg.Billing.SettingsSource == "database" {
		var store settings.Store = repositories.NewSettingsRepo(db, log)
		if cache != nil {
			store = redis.NewCachedSettings(store, cache, cfg.Redis.DefaultTTL, log)
		}
		return store, nil
	}
	s, err := cfg.Billing.Settings()
	if err != nil {
		return nil, err
	}
	return settings.NewStatic(s), nil
}

// ReloadSettings pushes the billing section of a reloaded config into the
// running settings store.
func (r *Runtime) ReloadSettings(ctx context.Context, cfg *config.Config) error {
	s, err := cfg.Billing.Settings()
	if err != nil {
		return err
	}
	if err := r.Settings.Update(ctx, s); err != nil {
		return err
	}
	r.Logger.Info("billing settings reloaded",
		logging.FYStart(s.FinancialYear.StartYear),
		logging.Decimal("gbp_to_inr_rate", s.GBPToINRRate),
		logging.Decimal("usd_to_inr_rate", s.USDToINRRate),
		logging.Decimal("gst_rate", s.GSTRate))
	return nil
}

//Personal.AI order the ending
