// Package config defines the configuration structures of the billing engine.
// No I/O lives here, only plain data types and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/internal/domain/settings"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// DSN renders the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// URL renders the postgres:// form used by golang-migrate and pgx.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds producer and consumer parameters for billing events.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	GroupID      string        `mapstructure:"group_id"`
	TopicPrefix  string        `mapstructure:"topic_prefix"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	DLQEnabled   bool          `mapstructure:"dlq_enabled"`

	// SASLMechanism is PLAIN, SCRAM-SHA-256 or SCRAM-SHA-512; empty disables SASL.
	SASLMechanism string `mapstructure:"sasl_mechanism"`
	SASLUsername  string `mapstructure:"sasl_username"`
	SASLPassword  string `mapstructure:"sasl_password"`
}

// MinIOConfig holds object-storage parameters for report exports.
type MinIOConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

// BillingConfig holds the bootstrap billing parameters. Money values are kept
// as strings so they round-trip through YAML and env vars without float loss.
type BillingConfig struct {
	FinancialYearStart int           `mapstructure:"financial_year_start"`
	GBPToINRRate       string        `mapstructure:"gbp_to_inr_rate"`
	USDToINRRate       string        `mapstructure:"usd_to_inr_rate"`
	GSTRate            string        `mapstructure:"gst_rate"`
	DefaultServiceFee  string        `mapstructure:"default_service_fee"`
	EnforceStatusOrder bool          `mapstructure:"enforce_status_order"`
	SettingsSource     string        `mapstructure:"settings_source"` // "config" | "database"
	SummaryCacheTTL    time.Duration `mapstructure:"summary_cache_ttl"`
}

// Settings converts the billing section into domain settings.
func (b BillingConfig) Settings() (*settings.Settings, error) {
	gbp, err := decimal.NewFromString(b.GBPToINRRate)
	if err != nil {
		return nil, fmt.Errorf("config: billing.gbp_to_inr_rate %q: %w", b.GBPToINRRate, err)
	}
	usd, err := decimal.NewFromString(b.USDToINRRate)
	if err != nil {
		return nil, fmt.Errorf("config: billing.usd_to_inr_rate %q: %w", b.USDToINRRate, err)
	}
	gst, err := decimal.NewFromString(b.GSTRate)
	if err != nil {
		return nil, fmt.Errorf("config: billing.gst_rate %q: %w", b.GSTRate, err)
	}
	s := &settings.Settings{
		FinancialYear: billing.NewFinancialYear(b.FinancialYearStart),
		GBPToINRRate:  gbp,
		USDToINRRate:  usd,
		GSTRate:       gst,
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("config: billing: %w", err)
	}
	return s, nil
}

// ServiceFee parses the default fee assigned to seeded clients.
func (b BillingConfig) ServiceFee() decimal.Decimal {
	fee, err := decimal.NewFromString(b.DefaultServiceFee)
	if err != nil {
		return billing.DefaultServiceFee
	}
	return fee
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig      `mapstructure:"server"`
	Database DatabaseConfig    `mapstructure:"database"`
	Redis    RedisConfig       `mapstructure:"redis"`
	Kafka    KafkaConfig       `mapstructure:"kafka"`
	MinIO    MinIOConfig       `mapstructure:"minio"`
	Log      logging.LogConfig `mapstructure:"log"`
	Metrics  MetricsConfig     `mapstructure:"metrics"`
	Billing  BillingConfig     `mapstructure:"billing"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of a fully-populated Config and
// returns the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be ≥ 1, got %d", c.Database.MaxConns)
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when redis is enabled")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.GroupID == "" {
			return fmt.Errorf("config: kafka.group_id is required")
		}
		switch c.Kafka.SASLMechanism {
		case "", "PLAIN", "SCRAM-SHA-256", "SCRAM-SHA-512":
		default:
			return fmt.Errorf("config: kafka.sasl_mechanism %q is invalid", c.Kafka.SASLMechanism)
		}
	}

	if c.MinIO.Enabled && (c.MinIO.Endpoint == "" || c.MinIO.Bucket == "") {
		return fmt.Errorf("config: minio.endpoint and minio.bucket are required when minio is enabled")
	}

	switch c.Log.Level {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	switch c.Billing.SettingsSource {
	case "config", "database":
	default:
		return fmt.Errorf("config: billing.settings_source %q is invalid; expected config|database", c.Billing.SettingsSource)
	}
	fee := c.Billing.ServiceFee()
	if err := billing.ValidateFee(fee); err != nil {
		return fmt.Errorf("config: billing.default_service_fee: %w", err)
	}
	if _, err := c.Billing.Settings(); err != nil {
		return err
	}
	return nil
}

//Personal.AI order the ending
