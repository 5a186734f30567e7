package configs

import "time"

// Catalog points at the creatives file. An empty path serves nothing.
type Catalog struct {
	Path            string        `env:"PATH"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"1m"`
}

// Kafka configures the optional ad event consumer. It is off while Brokers
// is empty.
type Kafka struct {
	Brokers []string      `env:"BROKERS" envSeparator:","`
	Topic   string        `env:"TOPIC" envDefault:"ad-events"`
	GroupID string        `env:"GROUP_ID" envDefault:"bat-ads"`
	Backoff time.Duration `env:"BACKOFF" envDefault:"1s"`
}

// Tracing configures the Jaeger exporter.
type Tracing struct {
	Enabled     bool   `env:"ENABLED" envDefault:"false"`
	Endpoint    string `env:"ENDPOINT" envDefault:"http://localhost:14268/api/traces"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"bat-ads"`
}
