package configs

import "time"

// HTTP configures the API server.
type HTTP struct {
	// Port is the TCP port the API listens on.
	Port uint16 `env:"PORT" envDefault:"8080"`
	// ReadHeaderTimeout bounds how long a client may take to send headers.
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"10s"`
	// ShutdownTimeout is the grace period for in-flight requests on exit.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}
