package ainoship

import (
	"fmt"
	"time"

	"github.com/ainoio/ainoship/internal/app"
	"github.com/ainoio/ainoship/internal/domain"
)

// DefaultURL is the Aino.io transaction API endpoint.
const DefaultURL = "https://data.aino.io/rest/v2/transaction"

// Default values applied by SetDefaults.
const (
	DefaultSendInterval   = time.Second
	DefaultMaxBatchSize   = domain.DefaultMaxBatchSize
	DefaultSendTimeout    = 30 * time.Second
	DefaultBackoffInitial = 500 * time.Millisecond
	DefaultBackoffMax     = 10 * time.Second
)

// Config holds the configuration for an Agent.
type Config struct {
	// URL is the ingestion endpoint used by the default HTTP transport.
	URL string

	// APIKey is sent as "Authorization: apikey <key>".
	// Required unless a custom sender is supplied with WithSender.
	APIKey string

	// SendInterval is how long transactions may wait in the buffer before
	// a batch is sent.
	SendInterval time.Duration

	// MaxBatchSize caps the number of transactions in one batch. A buffer
	// holding more than this is flushed without waiting for SendInterval.
	MaxBatchSize int

	// SendTimeout bounds a single send attempt.
	SendTimeout time.Duration

	// MaxRetries is how many times a failed batch is re-sent before it is
	// dropped. Zero drops on the first failure.
	MaxRetries int

	// BackoffInitial and BackoffMax bound the jittered delay between retries.
	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// DefaultConfig returns a Config with default values. APIKey must still be set.
func DefaultConfig() Config {
	var cfg Config
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills zero-valued fields with defaults.
func (c *Config) SetDefaults() {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.SendInterval == 0 {
		c.SendInterval = DefaultSendInterval
	}
	if c.MaxBatchSize == 0 {
		c.MaxBatchSize = DefaultMaxBatchSize
	}
	if c.SendTimeout == 0 {
		c.SendTimeout = DefaultSendTimeout
	}
	if c.BackoffInitial == 0 {
		c.BackoffInitial = DefaultBackoffInitial
	}
	if c.BackoffMax == 0 {
		c.BackoffMax = DefaultBackoffMax
	}
}

// Validate checks the configuration for errors.
// The API key is checked by New only when the HTTP transport is used.
func (c Config) Validate() error {
	if c.SendInterval <= 0 {
		return fmt.Errorf("%w: send interval must be positive", ErrInvalidConfig)
	}
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("%w: max batch size must be positive", ErrInvalidConfig)
	}
	if c.SendTimeout < 0 {
		return fmt.Errorf("%w: send timeout must not be negative", ErrInvalidConfig)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries must not be negative", ErrInvalidConfig)
	}
	if c.BackoffMax < c.BackoffInitial {
		return fmt.Errorf("%w: backoff max is below backoff initial", ErrInvalidConfig)
	}
	return nil
}

func (c Config) dispatcherConfig() app.DispatcherConfig {
	return app.DispatcherConfig{
		SendInterval:   c.SendInterval,
		MaxBatchSize:   c.MaxBatchSize,
		SendTimeout:    c.SendTimeout,
		MaxRetries:     c.MaxRetries,
		BackoffInitial: c.BackoffInitial,
		BackoffMax:     c.BackoffMax,
	}
}
