package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ainoio/ainoship/internal/domain"
	"github.com/ainoio/ainoship/internal/ports"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...ports.Field) {}
func (nopLogger) Info(string, ...ports.Field)  {}
func (nopLogger) Warn(string, ...ports.Field)  {}
func (nopLogger) Error(string, ...ports.Field) {}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestBatchSender_Send(t *testing.T) {
	w := &fakeWriter{}
	s := newBatchSender(w, nopLogger{}, ports.SendMetadata{Hostname: "host-a"})
	fixed := time.Unix(1700000000, 0)
	s.now = func() time.Time { return fixed }

	batch := &domain.Batch{
		ID: "batch-7",
		Transactions: []domain.Transaction{
			domain.NewTransaction("a", "b", "op1", domain.StatusSuccess, 1, "f", "s"),
			domain.NewTransaction("a", "b", "op2", domain.StatusFailure, 2, "f", "s"),
		},
	}

	if err := s.Send(context.Background(), batch); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "batch-7" || !msg.Time.Equal(fixed) {
		t.Errorf("key/time = %s/%v", msg.Key, msg.Time)
	}

	var payload domain.BatchPayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		t.Fatal(err)
	}
	if len(payload.Transactions) != 2 || payload.Transactions[1].Operation != "op2" {
		t.Errorf("payload = %+v", payload)
	}

	var host string
	for _, h := range msg.Headers {
		if h.Key == "agent-hostname" {
			host = string(h.Value)
		}
	}
	if host != "host-a" {
		t.Errorf("agent-hostname header = %q", host)
	}
}

func TestBatchSender_EmptyBatch(t *testing.T) {
	w := &fakeWriter{}
	s := newBatchSender(w, nopLogger{}, ports.SendMetadata{})

	if err := s.Send(context.Background(), &domain.Batch{}); err != nil {
		t.Fatal(err)
	}
	if len(w.msgs) != 0 {
		t.Errorf("empty batch produced %d messages", len(w.msgs))
	}
}

func TestBatchSender_WriteError(t *testing.T) {
	cause := errors.New("leader not available")
	s := newBatchSender(&fakeWriter{err: cause}, nopLogger{}, ports.SendMetadata{})

	batch := &domain.Batch{ID: "b", Transactions: []domain.Transaction{
		domain.NewTransaction("a", "b", "op", domain.StatusSuccess, 1, "", ""),
	}}
	if err := s.Send(context.Background(), batch); !errors.Is(err, cause) {
		t.Errorf("Send() error = %v, want wrapped cause", err)
	}
}

func TestNewBatchSender_Validation(t *testing.T) {
	if _, err := NewBatchSender(" , ", "topic", nopLogger{}, ports.SendMetadata{}); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("no brokers: error = %v", err)
	}
	if _, err := NewBatchSender("localhost:9092", "", nopLogger{}, ports.SendMetadata{}); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("no topic: error = %v", err)
	}

	s, err := NewBatchSender("k1:9092, k2:9092", "transactions", nopLogger{}, ports.SendMetadata{})
	if err != nil {
		t.Fatal(err)
	}
	w := s.writer.(*kafka.Writer)
	if w.Topic != "transactions" || w.RequiredAcks != kafka.RequireAll {
		t.Errorf("writer = topic %q acks %v", w.Topic, w.RequiredAcks)
	}
	// one agent batch is one message; the writer must not wait for more
	if w.BatchSize != 1 || w.BatchTimeout <= 0 || w.BatchTimeout >= time.Second {
		t.Errorf("writer batching = size %d timeout %v", w.BatchSize, w.BatchTimeout)
	}
	if got := splitBrokers("k1:9092, k2:9092"); len(got) != 2 || got[1] != "k2:9092" {
		t.Errorf("splitBrokers = %v", got)
	}
	_ = s.Close()
}
