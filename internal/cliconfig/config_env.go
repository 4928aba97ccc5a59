package cliconfig

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable ainoship reads.
const EnvPrefix = "AINO_"

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set are not overridden and a missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// ApplyEnvConfig applies configuration from environment variables (AINO_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("url", env("URL"), &cfg.URL)
	s.setString("api-key", env("APIKEY"), &cfg.APIKey)
	s.setString("api-key", env("API_KEY"), &cfg.APIKey)
	s.setString("transport", env("TRANSPORT"), &cfg.Transport)
	s.setString("kafka-brokers", env("KAFKA_BROKERS"), &cfg.KafkaBrokers)
	s.setString("kafka-topic", env("KAFKA_TOPIC"), &cfg.KafkaTopic)
	s.setString("redis-url", env("REDIS_URL"), &cfg.RedisURL)
	s.setString("redis-key", env("REDIS_KEY"), &cfg.RedisKey)
	s.setString("otlp-endpoint", env("OTLP_ENDPOINT"), &cfg.OTLPEndpoint)
	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setMillisFromString("send-interval", env("SEND_INTERVAL"), &cfg.SendInterval); err != nil {
		return err
	}
	if err := s.setIntFromString("max-batch-size", env("MAX_BATCH_SIZE"), &cfg.MaxBatchSize); err != nil {
		return err
	}
	if err := s.setIntFromString("max-retries", env("MAX_RETRIES"), &cfg.MaxRetries); err != nil {
		return err
	}
	if err := s.setDuration("send-timeout", env("SEND_TIMEOUT"), &cfg.SendTimeout); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", env("SHUTDOWN_TIMEOUT"), &cfg.ShutdownTimeout); err != nil {
		return err
	}

	return nil
}

func env(key string) string {
	return os.Getenv(EnvPrefix + key)
}
