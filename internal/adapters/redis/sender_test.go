package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/ainoio/ainoship/internal/domain"
	"github.com/ainoio/ainoship/internal/ports"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...ports.Field) {}
func (nopLogger) Info(string, ...ports.Field)  {}
func (nopLogger) Warn(string, ...ports.Field)  {}
func (nopLogger) Error(string, ...ports.Field) {}

func newTestSender(t *testing.T, key string) (*BatchSender, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewBatchSenderWithClient(rdb, key, nopLogger{})
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestBatchSender_PushesMsgpackBatch(t *testing.T) {
	s, mr := newTestSender(t, "")

	tx := domain.NewTransaction("SAP", "CRM", "Sync", domain.StatusFailure, 1700000000000, "flow", "seg")
	tx.WithMessage("timeout").AddID(domain.NewTransactionID("OrderId", "1"))
	batch := &domain.Batch{ID: "b1", Transactions: []domain.Transaction{tx}}

	if err := s.Send(context.Background(), batch); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	values, err := mr.DB(0).List(DefaultKey)
	if err != nil {
		t.Fatalf("list %s: %v", DefaultKey, err)
	}
	if len(values) != 1 {
		t.Fatalf("list length = %d, want 1", len(values))
	}

	popped, err := mr.Lpop(DefaultKey)
	if err != nil {
		t.Fatal(err)
	}
	payload, err := Decode([]byte(popped))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(payload.Transactions) != 1 {
		t.Fatalf("transactions = %d", len(payload.Transactions))
	}
	got := payload.Transactions[0]
	if got.From != "SAP" || got.Status != domain.StatusFailure || got.Message != "timeout" || got.IDs[0].Values[0] != "1" {
		t.Errorf("decoded = %+v", got)
	}
}

func TestBatchSender_CustomKeyAndEmptyBatch(t *testing.T) {
	s, mr := newTestSender(t, "custom")

	if err := s.Send(context.Background(), &domain.Batch{}); err != nil {
		t.Fatal(err)
	}
	if mr.Exists("custom") {
		t.Error("empty batch was pushed")
	}

	batch := &domain.Batch{Transactions: []domain.Transaction{
		domain.NewTransaction("a", "b", "op", domain.StatusSuccess, 1, "", ""),
	}}
	if err := s.Send(context.Background(), batch); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists("custom") {
		t.Error("batch not pushed to custom key")
	}
}

func TestBatchSender_ServerDown(t *testing.T) {
	s, mr := newTestSender(t, "")
	mr.Close()

	batch := &domain.Batch{Transactions: []domain.Transaction{
		domain.NewTransaction("a", "b", "op", domain.StatusSuccess, 1, "", ""),
	}}
	if err := s.Send(context.Background(), batch); err == nil {
		t.Error("Send() succeeded against a closed server")
	}
}

func TestNewBatchSender_BadURL(t *testing.T) {
	if _, err := NewBatchSender("://nope", "", nopLogger{}); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}
