package configs

import "time"

// Sync tunes the retry and backoff behaviour of the sync engine. Delays
// grow exponentially per attempt (base * 2^attempt) and are capped at
// MaxDelay. Only transient (network-class) failures are retried.
type Sync struct {
	// MaxAttempts is the total number of tries per entity, including the
	// first one.
	MaxAttempts int `env:"MAX_ATTEMPTS" envDefault:"3"`
	// BaseDelay is the backoff delay before the first retry.
	BaseDelay time.Duration `env:"BASE_DELAY" envDefault:"1s"`
	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"30s"`
}
