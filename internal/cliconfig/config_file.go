package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// DefaultRunMode selects <dir>/development.toml when RUN_MODE is unset.
const DefaultRunMode = "development"

// FileConfig mirrors Config in TOML. send_interval is integer milliseconds;
// camelCase aliases are accepted for api_key and send_interval.
type FileConfig struct {
	URL             string `toml:"url"`
	APIKey          string `toml:"api_key"`
	APIKeyAlias     string `toml:"apiKey"`
	SendInterval    int64  `toml:"send_interval"`
	SendIntervalAlt int64  `toml:"sendInterval"`
	MaxBatchSize    int    `toml:"max_batch_size"`
	SendTimeout     string `toml:"send_timeout"`
	MaxRetries      int    `toml:"max_retries"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
	Transport       string `toml:"transport"`
	KafkaBrokers    string `toml:"kafka_brokers"`
	KafkaTopic      string `toml:"kafka_topic"`
	RedisURL        string `toml:"redis_url"`
	RedisKey        string `toml:"redis_key"`
	OTLPEndpoint    string `toml:"otlp_endpoint"`
	LogLevel        string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// LayeredPaths returns the config files read from dir, lowest precedence
// first: default.toml, <runMode>.toml, local.toml.
func LayeredPaths(dir, runMode string) []string {
	if runMode == "" {
		runMode = DefaultRunMode
	}
	return []string{
		filepath.Join(dir, "default.toml"),
		filepath.Join(dir, runMode+".toml"),
		filepath.Join(dir, "local.toml"),
	}
}

// ApplyLayeredFiles applies every existing file from LayeredPaths in order.
// Missing files are skipped. Returns the paths that were applied.
func ApplyLayeredFiles(cfg *Config, dir, runMode string, changed map[string]bool) ([]string, error) {
	var applied []string
	for _, p := range LayeredPaths(dir, runMode) {
		if !FileExists(p) {
			continue
		}
		fc, err := LoadFileConfig(p)
		if err != nil {
			return applied, err
		}
		if err := ApplyFileConfig(cfg, fc, changed); err != nil {
			return applied, err
		}
		applied = append(applied, p)
	}
	return applied, nil
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("url", fc.URL, &cfg.URL)
	s.setString("api-key", fc.APIKeyAlias, &cfg.APIKey)
	s.setString("api-key", fc.APIKey, &cfg.APIKey)
	s.setString("transport", fc.Transport, &cfg.Transport)
	s.setString("kafka-brokers", fc.KafkaBrokers, &cfg.KafkaBrokers)
	s.setString("kafka-topic", fc.KafkaTopic, &cfg.KafkaTopic)
	s.setString("redis-url", fc.RedisURL, &cfg.RedisURL)
	s.setString("redis-key", fc.RedisKey, &cfg.RedisKey)
	s.setString("otlp-endpoint", fc.OTLPEndpoint, &cfg.OTLPEndpoint)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setMillis("send-interval", fc.SendIntervalAlt, &cfg.SendInterval)
	s.setMillis("send-interval", fc.SendInterval, &cfg.SendInterval)
	s.setInt("max-batch-size", fc.MaxBatchSize, &cfg.MaxBatchSize)
	s.setInt("max-retries", fc.MaxRetries, &cfg.MaxRetries)

	if err := s.setDuration("send-timeout", fc.SendTimeout, &cfg.SendTimeout); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout); err != nil {
		return err
	}

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
