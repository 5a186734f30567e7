package configs

import (
	"net/url"
	"time"
)

// Ads configures the confirmation protocol and serving limits.
type Ads struct {
	// ServerURL is the ad server base URL; /v3 endpoints hang off it.
	ServerURL url.URL `env:"SERVER_URL" envDefault:"http://localhost:8090"`
	// PaymentID is the wallet payment id tokens are requested for. It must
	// be a UUID.
	PaymentID    string `env:"PAYMENT_ID,required"`
	BuildChannel string `env:"BUILD_CHANNEL" envDefault:"release"`
	Platform     string `env:"PLATFORM" envDefault:"linux"`

	MinUnblindedTokens int `env:"MIN_UNBLINDED_TOKENS" envDefault:"20"`
	MaxUnblindedTokens int `env:"MAX_UNBLINDED_TOKENS" envDefault:"50"`

	RetryBaseBackoff time.Duration `env:"RETRY_BASE_BACKOFF" envDefault:"15s"`
	RetryMaxBackoff  time.Duration `env:"RETRY_MAX_BACKOFF" envDefault:"1h"`
	OrphanWindow     time.Duration `env:"ORPHAN_WINDOW" envDefault:"1h"`
	Retention        time.Duration `env:"RETENTION" envDefault:"2160h"`

	// Serve limits per ad type. Zero is unlimited.
	MaxPerHour map[string]int `env:"MAX_PER_HOUR" envKeyValSeparator:"=" envDefault:"ad_notification=10"`
	MaxPerDay  map[string]int `env:"MAX_PER_DAY" envKeyValSeparator:"=" envDefault:"ad_notification=40"`

	// Transport to the ad server.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	RequestRetries int           `env:"REQUEST_RETRIES" envDefault:"2"`

	// Background task intervals. Zero disables a task.
	IssuersInterval time.Duration `env:"ISSUERS_INTERVAL" envDefault:"2h"`
	RefillInterval  time.Duration `env:"REFILL_INTERVAL" envDefault:"1m"`
	RetryInterval   time.Duration `env:"RETRY_INTERVAL" envDefault:"15s"`
	PayoutInterval  time.Duration `env:"PAYOUT_INTERVAL" envDefault:"24h"`
	PurgeInterval   time.Duration `env:"PURGE_INTERVAL" envDefault:"1h"`
	HealthInterval  time.Duration `env:"HEALTH_INTERVAL" envDefault:"30s"`
}
