package config

import (
	"time"

	"github.com/spf13/viper"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort      = 8080
	DefaultServerMode      = "release"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxBodySize     = 1 << 20

	DefaultDBHost          = "localhost"
	DefaultDBPort          = 5432
	DefaultDBUser          = "mrm"
	DefaultDBName          = "mrm_billing"
	DefaultDBMaxConns      = 20
	DefaultDBMaxIdleConns  = 5
	DefaultDBConnLifetime  = 30 * time.Minute
	DefaultDBMigrationPath = "internal/infrastructure/database/postgres/migrations"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisPoolSize  = 10
	DefaultRedisTTL       = 10 * time.Minute
	DefaultRedisKeyPrefix = "mrm:"

	DefaultKafkaBroker       = "localhost:9092"
	DefaultKafkaGroupID      = "mrm-billing-worker"
	DefaultKafkaMaxRetries   = 3
	DefaultKafkaRetryBackoff = 500 * time.Millisecond
	DefaultKafkaBatchSize    = 100
	DefaultKafkaBatchTimeout = 50 * time.Millisecond

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "mrm-exports"

	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "mrm"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultFinancialYearStart = 2025
	DefaultGBPToINRRate       = "110.50"
	DefaultUSDToINRRate       = "83.00"
	DefaultGSTRate            = "0.18"
	DefaultServiceFee         = "0.10"
	DefaultSettingsSource     = "config"
	DefaultSummaryCacheTTL    = 5 * time.Minute
)

// registerDefaults seeds v with every known key so that MRM_* environment
// variables resolve even when no config file mentions the key.
func registerDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.mode", DefaultServerMode)
	v.SetDefault("server.read_timeout", DefaultReadTimeout)
	v.SetDefault("server.write_timeout", DefaultWriteTimeout)
	v.SetDefault("server.max_body_size", DefaultMaxBodySize)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.host", DefaultDBHost)
	v.SetDefault("database.port", DefaultDBPort)
	v.SetDefault("database.user", DefaultDBUser)
	v.SetDefault("database.password", "")
	v.SetDefault("database.db_name", DefaultDBName)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", DefaultDBMaxConns)
	v.SetDefault("database.max_idle_conns", DefaultDBMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", DefaultDBConnLifetime)
	v.SetDefault("database.conn_max_idle_time", 5*time.Minute)
	v.SetDefault("database.migration_path", DefaultDBMigrationPath)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", DefaultRedisAddr)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", DefaultRedisPoolSize)
	v.SetDefault("redis.default_ttl", DefaultRedisTTL)
	v.SetDefault("redis.key_prefix", DefaultRedisKeyPrefix)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{DefaultKafkaBroker})
	v.SetDefault("kafka.group_id", DefaultKafkaGroupID)
	v.SetDefault("kafka.topic_prefix", "")
	v.SetDefault("kafka.max_retries", DefaultKafkaMaxRetries)
	v.SetDefault("kafka.retry_backoff", DefaultKafkaRetryBackoff)
	v.SetDefault("kafka.dlq_enabled", true)

	v.SetDefault("minio.enabled", false)
	v.SetDefault("minio.endpoint", DefaultMinIOEndpoint)
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.bucket", DefaultMinIOBucket)
	v.SetDefault("minio.use_ssl", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", DefaultMetricsPath)
	v.SetDefault("metrics.namespace", DefaultMetricsNamespace)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetDefault("billing.financial_year_start", DefaultFinancialYearStart)
	v.SetDefault("billing.gbp_to_inr_rate", DefaultGBPToINRRate)
	v.SetDefault("billing.usd_to_inr_rate", DefaultUSDToINRRate)
	v.SetDefault("billing.gst_rate", DefaultGSTRate)
	v.SetDefault("billing.default_service_fee", DefaultServiceFee)
	v.SetDefault("billing.enforce_status_order", false)
	v.SetDefault("billing.settings_source", DefaultSettingsSource)
	v.SetDefault("billing.summary_cache_ttl", DefaultSummaryCacheTTL)
}

// ApplyDefaults fills every zero-value field in cfg. Values already set win.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBodySize
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.User == "" {
		cfg.Database.User = DefaultDBUser
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = DefaultDBMaxIdleConns
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = DefaultDBConnLifetime
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = DefaultDBMigrationPath
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.MaxRetries == 0 {
		cfg.Kafka.MaxRetries = DefaultKafkaMaxRetries
	}
	if cfg.Kafka.RetryBackoff == 0 {
		cfg.Kafka.RetryBackoff = DefaultKafkaRetryBackoff
	}
	if cfg.Kafka.BatchSize == 0 {
		cfg.Kafka.BatchSize = DefaultKafkaBatchSize
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = DefaultKafkaBatchTimeout
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Billing ───────────────────────────────────────────────────────────────
	if cfg.Billing.FinancialYearStart == 0 {
		cfg.Billing.FinancialYearStart = DefaultFinancialYearStart
	}
	if cfg.Billing.GBPToINRRate == "" {
		cfg.Billing.GBPToINRRate = DefaultGBPToINRRate
	}
	if cfg.Billing.USDToINRRate == "" {
		cfg.Billing.USDToINRRate = DefaultUSDToINRRate
	}
	if cfg.Billing.GSTRate == "" {
		cfg.Billing.GSTRate = DefaultGSTRate
	}
	if cfg.Billing.DefaultServiceFee == "" {
		cfg.Billing.DefaultServiceFee = DefaultServiceFee
	}
	if cfg.Billing.SettingsSource == "" {
		cfg.Billing.SettingsSource = DefaultSettingsSource
	}
	if cfg.Billing.SummaryCacheTTL == 0 {
		cfg.Billing.SummaryCacheTTL = DefaultSummaryCacheTTL
	}
}

// NewDefaultConfig returns a Config populated only with defaults.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

//Personal.AI order the ending
