// Package redis implements ports.BatchSender by pushing msgpack-encoded
// batches onto a Redis list for a downstream consumer.
package redis

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ainoio/ainoship/internal/domain"
	"github.com/ainoio/ainoship/internal/ports"
)

// DefaultKey is the list batches are pushed onto when none is configured.
const DefaultKey = "aino:transactions"

// BatchSender RPUSHes each batch onto a Redis list.
type BatchSender struct {
	client *redis.Client
	key    string
	logger ports.Logger
}

// NewBatchSender connects to the Redis instance at url (redis://host:port/db).
func NewBatchSender(url, key string, logger ports.Logger) (*BatchSender, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("%w: redis url: %v", domain.ErrInvalidConfig, err)
	}
	return NewBatchSenderWithClient(redis.NewClient(opt), key, logger), nil
}

// NewBatchSenderWithClient creates a sender on an existing client.
func NewBatchSenderWithClient(client *redis.Client, key string, logger ports.Logger) *BatchSender {
	if key == "" {
		key = DefaultKey
	}
	return &BatchSender{client: client, key: key, logger: logger}
}

// Send pushes a batch onto the list.
func (s *BatchSender) Send(ctx context.Context, batch *domain.Batch) error {
	if batch.Empty() {
		return nil
	}

	data, err := Encode(batch.Payload())
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	if err := s.client.RPush(ctx, s.key, data).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", s.key, err)
	}

	s.logger.Debug("batch pushed",
		ports.String("batch_id", batch.ID),
		ports.String("key", s.key),
		ports.Int("bytes", len(data)),
	)
	return nil
}

// Close closes the client.
func (s *BatchSender) Close() error {
	return s.client.Close()
}

// Encode serialises a payload with msgpack using the JSON field names, so
// consumers see the same keys as the HTTP body.
func Encode(p domain.BatchPayload) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode is the inverse of Encode.
func Decode(data []byte) (domain.BatchPayload, error) {
	var p domain.BatchPayload
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	err := dec.Decode(&p)
	return p, err
}
