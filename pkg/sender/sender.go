package sender

import (
	"io"
	"os"
	"runtime"
	"time"

	httpAdapter "github.com/ainoio/ainoship/internal/adapters/http"
	kafkaAdapter "github.com/ainoio/ainoship/internal/adapters/kafka"
	logAdapter "github.com/ainoio/ainoship/internal/adapters/log"
	redisAdapter "github.com/ainoio/ainoship/internal/adapters/redis"
	"github.com/ainoio/ainoship/internal/ports"
)

// Sender transmits one batch of transactions.
type Sender = ports.BatchSender

// HTTPClient is the interface for making HTTP requests.
// *http.Client satisfies this interface.
type HTTPClient = ports.HTTPClient

// Metadata identifies the agent to the receiving side.
type Metadata = ports.SendMetadata

// StatusError is returned by the HTTP sender for non-2xx responses.
type StatusError = httpAdapter.StatusError

// SenderCloser is a Sender owning a connection that must be closed.
type SenderCloser interface {
	Sender
	io.Closer
}

// HTTPConfig configures NewHTTP.
type HTTPConfig struct {
	URL    string
	APIKey string

	// Client defaults to an otelhttp-instrumented client with Timeout.
	Client  HTTPClient
	Timeout time.Duration
	Logger  ports.Logger
}

// NewHTTP returns the default transport: a JSON POST of
// {"transactions": [...]} with "Authorization: apikey <key>".
func NewHTTP(cfg HTTPConfig) Sender {
	client := cfg.Client
	if client == nil {
		client = httpAdapter.NewClient(cfg.Timeout)
	}
	return httpAdapter.NewBatchSender(client, loggerOrNoop(cfg.Logger), Metadata{
		Hostname: hostname(),
		OSArch:   OSArch(),
		APIKey:   cfg.APIKey,
		URL:      cfg.URL,
	})
}

// KafkaConfig configures NewKafka.
type KafkaConfig struct {
	// Brokers is a comma-separated list of host:port addresses.
	Brokers string
	Topic   string
	Logger  ports.Logger
}

// NewKafka returns a sender that writes each batch as one Kafka message
// keyed by batch ID.
func NewKafka(cfg KafkaConfig) (SenderCloser, error) {
	s, err := kafkaAdapter.NewBatchSender(cfg.Brokers, cfg.Topic, loggerOrNoop(cfg.Logger), Metadata{
		Hostname: hostname(),
		OSArch:   OSArch(),
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// RedisConfig configures NewRedis.
type RedisConfig struct {
	// URL is a redis:// URL.
	URL string

	// Key is the list receiving batches; defaults to "aino:transactions".
	Key    string
	Logger ports.Logger
}

// NewRedis returns a sender that RPUSHes each batch, msgpack encoded, onto
// a Redis list.
func NewRedis(cfg RedisConfig) (SenderCloser, error) {
	s, err := redisAdapter.NewBatchSender(cfg.URL, cfg.Key, loggerOrNoop(cfg.Logger))
	if err != nil {
		return nil, err
	}
	return s, nil
}

// OSArch returns the platform string sent as agent metadata.
func OSArch() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

func loggerOrNoop(l ports.Logger) ports.Logger {
	if l == nil {
		return logAdapter.NewNoopLogger()
	}
	return l
}

func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}
