// Package kafka implements ports.BatchSender by publishing each batch as one
// Kafka message.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ainoio/ainoship/internal/domain"
	"github.com/ainoio/ainoship/internal/ports"
)

// messageWriter is the subset of *kafka.Writer the sender needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// BatchSender publishes batches to a Kafka topic. The message key is the
// batch ID and the value is the JSON batch payload.
type BatchSender struct {
	writer   messageWriter
	logger   ports.Logger
	metadata ports.SendMetadata
	now      func() time.Time
}

// NewBatchSender creates a sender writing to topic on the comma-separated
// broker list.
func NewBatchSender(brokers, topic string, logger ports.Logger, metadata ports.SendMetadata) (*BatchSender, error) {
	addrs := splitBrokers(brokers)
	if len(addrs) == 0 {
		return nil, fmt.Errorf("%w: kafka brokers are required", domain.ErrInvalidConfig)
	}
	if topic == "" {
		return nil, fmt.Errorf("%w: kafka topic is required", domain.ErrInvalidConfig)
	}

	return newBatchSender(newWriter(addrs, topic), logger, metadata), nil
}

// newWriter builds a writer that flushes each WriteMessages call at once.
// The agent already batches, and kafka-go's default BatchTimeout would
// hold every synchronous send for a second.
func newWriter(addrs []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(addrs...),
		Topic:        topic,
		RequiredAcks: kafka.RequireAll,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
	}
}

func newBatchSender(w messageWriter, logger ports.Logger, metadata ports.SendMetadata) *BatchSender {
	return &BatchSender{
		writer:   w,
		logger:   logger,
		metadata: metadata,
		now:      time.Now,
	}
}

// Send publishes a batch.
func (s *BatchSender) Send(ctx context.Context, batch *domain.Batch) error {
	if batch.Empty() {
		return nil
	}

	data, err := json.Marshal(batch.Payload())
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(batch.ID),
		Value: data,
		Time:  s.now(),
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	}
	if s.metadata.Hostname != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "agent-hostname", Value: []byte(s.metadata.Hostname)})
	}

	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}

	s.logger.Debug("batch published",
		ports.String("batch_id", batch.ID),
		ports.Int("bytes", len(data)),
	)
	return nil
}

// Close flushes and closes the underlying writer.
func (s *BatchSender) Close() error {
	return s.writer.Close()
}

func splitBrokers(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
