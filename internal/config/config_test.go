package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimal = `
server:
  port: 8080
database:
  host: localhost
  port: 5432
  user: rental
  database: rental
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(minimal))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 24, cfg.Booking.CancellationHours)
	assert.Equal(t, time.Hour, cfg.Booking.PendingTTL())
	assert.Equal(t, 3, cfg.Booking.ConfirmRetries)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CatalogTTL())
	assert.Equal(t, "booking-events", cfg.Kafka.BookingEventsTopic)
	assert.Equal(t, "0 */5 * * * *", cfg.Scheduler.ExpirePendingBookings)

	d, err := cfg.Pricing.Defaults()
	require.NoError(t, err)
	assert.Equal(t, "21", d.TaxRatePercent.String())
	assert.Equal(t, "0.21", d.TaxRate().String())
	assert.Equal(t, "0.15", d.ExtraKmRate.String())
	assert.Equal(t, 150, d.DefaultKmPerDay)
	assert.Equal(t, "postgres://rental:@localhost:5432/rental?sslmode=disable", cfg.GetDatabaseConnectionString())
}

func TestParse_PricingSection(t *testing.T) {
	cfg, err := Parse([]byte(minimal + `
pricing:
  tax_rate_percent: 10
  extra_km_rate: "0.25"
  default_km_per_day: 200
`))
	require.NoError(t, err)

	d, err := cfg.Pricing.Defaults()
	require.NoError(t, err)
	assert.Equal(t, "0.1", d.TaxRate().String())
	assert.Equal(t, "0.25", d.ExtraKmRate.String())
	assert.Equal(t, 200, d.DefaultKmPerDay)
}

func TestParse_Invalid(t *testing.T) {
	t.Run("bad tax rate", func(t *testing.T) {
		_, err := Parse([]byte(minimal + "pricing:\n  tax_rate_percent: abc\n"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "tax_rate_percent")
	})

	t.Run("negative km rate", func(t *testing.T) {
		_, err := Parse([]byte(minimal + "pricing:\n  extra_km_rate: \"-1\"\n"))
		assert.Error(t, err)
	})

	t.Run("missing database", func(t *testing.T) {
		_, err := Parse([]byte("server:\n  port: 8080\n"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "database host is required")
	})
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o600))

	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("TAX_RATE_PERCENT", "19")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "19", cfg.Pricing.TaxRatePercent)
}
