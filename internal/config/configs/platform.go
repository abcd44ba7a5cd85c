package configs

import (
	"net/url"
	"time"
)

// Platform configures the remote ad-platform API client and the shared
// rate limit all calls pass through.
type Platform struct {
	// Addr is the base URL of the platform REST API.
	Addr url.URL `env:"ADDRESS" envDefault:"http://localhost:9090"`
	// APIKey authenticates every request via the X-Api-Key header.
	APIKey string `env:"API_KEY"`
	// Timeout bounds a single HTTP request.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
	// RatePerSecond is the sustained request rate allowed against the
	// platform; Burst is the token-bucket burst size.
	RatePerSecond float64 `env:"RATE_PER_SECOND" envDefault:"5"`
	Burst         int     `env:"BURST" envDefault:"5"`
}
