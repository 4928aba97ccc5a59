package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ainoio/ainoship/internal/domain"
)

// DefaultURL is the Aino.io transaction API endpoint.
const DefaultURL = "https://data.aino.io/rest/v2/transaction"

// Supported transports.
const (
	TransportHTTP  = "http"
	TransportKafka = "kafka"
	TransportRedis = "redis"
)

// Config holds CLI configuration for ainoship.
type Config struct {
	URL    string
	APIKey string

	SendInterval    time.Duration
	MaxBatchSize    int
	SendTimeout     time.Duration
	MaxRetries      int
	ShutdownTimeout time.Duration

	Transport    string
	KafkaBrokers string
	KafkaTopic   string
	RedisURL     string
	RedisKey     string

	OTLPEndpoint string
	LogLevel     string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		URL:             DefaultURL,
		SendInterval:    time.Second,
		MaxBatchSize:    domain.DefaultMaxBatchSize,
		SendTimeout:     30 * time.Second,
		ShutdownTimeout: time.Minute,
		Transport:       TransportHTTP,
		KafkaTopic:      "aino-transactions",
		RedisKey:        "aino:transactions",
		LogLevel:        "info",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))

	switch c.Transport {
	case TransportHTTP, "":
		c.Transport = TransportHTTP
		if c.URL == "" {
			return invalid("url is required")
		}
		if c.APIKey == "" {
			return invalid("api key is required")
		}
	case TransportKafka:
		if c.KafkaBrokers == "" {
			return invalid("kafka brokers are required")
		}
		if c.KafkaTopic == "" {
			return invalid("kafka topic is required")
		}
	case TransportRedis:
		if c.RedisURL == "" {
			return invalid("redis url is required")
		}
	default:
		return invalid(fmt.Sprintf("unknown transport %q", c.Transport))
	}

	if c.SendInterval <= 0 {
		return invalid("send interval must be positive")
	}
	if c.MaxBatchSize <= 0 {
		return invalid("max batch size must be positive")
	}
	if c.MaxRetries < 0 {
		return invalid("max retries must not be negative")
	}

	return nil
}

// Masked returns a copy safe to log.
func (c Config) Masked() Config {
	if c.APIKey != "" {
		c.APIKey = "*****"
	}
	return c
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, msg)
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setMillis sets a duration given in milliseconds if positive and flag not changed.
func (s *configSetter) setMillis(flag string, value int64, dst *time.Duration) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = time.Duration(value) * time.Millisecond
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination if valid.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setMillisFromString parses integer milliseconds from a string.
func (s *configSetter) setMillisFromString(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	s.setMillis(flag, ms, dst)
	return nil
}
