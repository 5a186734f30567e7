package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"

	"bat-ads/internal/config/configs"
	"bat-ads/internal/core/domain"
	"bat-ads/internal/db"
)

// Config aggregates all configuration sections for the application. Fields
// are populated from environment variables using the caarlos0/env library. The
// nested structs are tagged with envPrefix so their fields are parsed with
// the given prefix. See the individual types in the configs package for
// default values and options. Use Load to construct a Config.
type Config struct {
	// Env specifies the deployment environment (e.g. prod, dev).
	Env string `env:"ENV" envDefault:"prod"`

	// StorageDriver selects the backend: "sqlite" or "postgres".
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"sqlite"`

	// HTTP holds configuration for the HTTP server. Environment variables
	// prefixed with HTTP_ will populate this struct.
	HTTP configs.HTTP `envPrefix:"HTTP_"`

	// Log configures the structured logger. Environment variables prefixed
	// with LOG_ will populate this struct.
	Log configs.Logger `envPrefix:"LOG_"`

	// Psql configures the PostgreSQL connection. Environment variables
	// prefixed with PSQL_ will populate this struct.
	Psql configs.Postgres `envPrefix:"PSQL_"`

	SQLite  configs.SQLite  `envPrefix:"SQLITE_"`
	Ads     configs.Ads     `envPrefix:"ADS_"`
	Catalog configs.Catalog `envPrefix:"CATALOG_"`
	Kafka   configs.Kafka   `envPrefix:"KAFKA_"`
	Tracing configs.Tracing `envPrefix:"TRACING_"`
}

// Load reads configuration from environment variables into a Config. If
// parsing or validation fails, an error is returned. All fields are loaded
// with their specified defaults when no environment variable is provided.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate checks values env tags cannot express.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("STORAGE_DRIVER: unknown driver %q", c.StorageDriver)
	}
	if err := uuid.Validate(c.Ads.PaymentID); err != nil {
		return fmt.Errorf("ADS_PAYMENT_ID: %w", err)
	}
	if c.Ads.MinUnblindedTokens <= 0 || c.Ads.MaxUnblindedTokens < c.Ads.MinUnblindedTokens {
		return fmt.Errorf("ADS_MIN_UNBLINDED_TOKENS/ADS_MAX_UNBLINDED_TOKENS: need 0 < min <= max, got %d and %d",
			c.Ads.MinUnblindedTokens, c.Ads.MaxUnblindedTokens)
	}
	for name, caps := range map[string]map[string]int{"ADS_MAX_PER_HOUR": c.Ads.MaxPerHour, "ADS_MAX_PER_DAY": c.Ads.MaxPerDay} {
		for adType, n := range caps {
			if _, err := domain.ParseAdType(adType); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if n < 0 {
				return fmt.Errorf("%s: negative cap for %s", name, adType)
			}
		}
	}
	return nil
}
