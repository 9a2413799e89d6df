package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"rentacar-backend/internal/pricing"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Log       LogConfig       `yaml:"log"`
	Pricing   PricingConfig   `yaml:"pricing"`
	Booking   BookingConfig   `yaml:"booking"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// RedisConfig contains the catalog cache settings. An empty Addr disables
// the cache.
type RedisConfig struct {
	Addr              string `yaml:"addr"`
	Password          string `yaml:"password"`
	DB                int    `yaml:"db"`
	CatalogTTLSeconds int    `yaml:"catalog_ttl_seconds"`
}

// KafkaConfig contains booking event publishing settings. No brokers means
// events are dropped.
type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// PricingConfig holds the rates the engine is parameterised with. Amounts
// are decimal strings so they are never routed through float64.
type PricingConfig struct {
	TaxRatePercent  string `yaml:"tax_rate_percent"`
	ExtraKmRate     string `yaml:"extra_km_rate"`
	DefaultKmPerDay int    `yaml:"default_km_per_day"`
	Currency        string `yaml:"currency"`
}

// BookingConfig contains booking lifecycle settings
type BookingConfig struct {
	CancellationHours int `yaml:"cancellation_hours"`
	PendingTTLMinutes int `yaml:"pending_ttl_minutes"`
	ConfirmRetries    int `yaml:"confirm_retries"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ExpirePendingBookings string `yaml:"expire_pending_bookings"`
	ReportOverdueReturns  string `yaml:"report_overdue_returns"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies environment overrides and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Redis
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}

	// Kafka
	if val := os.Getenv("KAFKA_BROKERS"); val != "" {
		c.Kafka.Brokers = strings.Split(val, ",")
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Pricing
	if val := os.Getenv("TAX_RATE_PERCENT"); val != "" {
		c.Pricing.TaxRatePercent = val
	}
	if val := os.Getenv("EXTRA_KM_RATE"); val != "" {
		c.Pricing.ExtraKmRate = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	// Redis defaults
	if c.Redis.CatalogTTLSeconds <= 0 {
		c.Redis.CatalogTTLSeconds = 300
	}

	// Kafka defaults
	if c.Kafka.BookingEventsTopic == "" {
		c.Kafka.BookingEventsTopic = "booking-events"
	}

	// Pricing defaults
	if c.Pricing.TaxRatePercent == "" {
		c.Pricing.TaxRatePercent = "21"
	}
	if c.Pricing.ExtraKmRate == "" {
		c.Pricing.ExtraKmRate = "0.15"
	}
	if c.Pricing.DefaultKmPerDay <= 0 {
		c.Pricing.DefaultKmPerDay = 150
	}
	if c.Pricing.Currency == "" {
		c.Pricing.Currency = "EUR"
	}
	if _, err := c.Pricing.Defaults(); err != nil {
		return err
	}

	// Booking defaults
	if c.Booking.CancellationHours <= 0 {
		c.Booking.CancellationHours = 24
	}
	if c.Booking.PendingTTLMinutes <= 0 {
		c.Booking.PendingTTLMinutes = 60
	}
	if c.Booking.ConfirmRetries <= 0 {
		c.Booking.ConfirmRetries = 3
	}

	// Scheduler defaults
	if c.Scheduler.ExpirePendingBookings == "" {
		c.Scheduler.ExpirePendingBookings = "0 */5 * * * *" // every 5 minutes
	}
	if c.Scheduler.ReportOverdueReturns == "" {
		c.Scheduler.ReportOverdueReturns = "0 0 8 * * *" // 8 AM UTC
	}

	return nil
}

// Defaults converts the pricing section into the engine's parameters.
func (p PricingConfig) Defaults() (pricing.Defaults, error) {
	tax, err := decimal.NewFromString(p.TaxRatePercent)
	if err != nil {
		return pricing.Defaults{}, fmt.Errorf("invalid tax_rate_percent %q: %w", p.TaxRatePercent, err)
	}
	if tax.IsNegative() || tax.GreaterThan(decimal.NewFromInt(100)) {
		return pricing.Defaults{}, fmt.Errorf("tax_rate_percent must be between 0 and 100, got %s", tax)
	}
	rate, err := decimal.NewFromString(p.ExtraKmRate)
	if err != nil {
		return pricing.Defaults{}, fmt.Errorf("invalid extra_km_rate %q: %w", p.ExtraKmRate, err)
	}
	if rate.IsNegative() {
		return pricing.Defaults{}, fmt.Errorf("extra_km_rate must not be negative, got %s", rate)
	}
	return pricing.Defaults{
		TaxRatePercent:  tax,
		ExtraKmRate:     rate,
		DefaultKmPerDay: p.DefaultKmPerDay,
	}, nil
}

func (b BookingConfig) CancellationWindow() time.Duration {
	return time.Duration(b.CancellationHours) * time.Hour
}

func (b BookingConfig) PendingTTL() time.Duration {
	return time.Duration(b.PendingTTLMinutes) * time.Minute
}

func (r RedisConfig) CatalogTTL() time.Duration {
	return time.Duration(r.CatalogTTLSeconds) * time.Second
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
