package app

import (
	"time"

	"github.com/ainoio/ainoship/internal/domain"
)

// Batcher owns the pending buffer and the flush interval state.
// It is used only from the dispatch goroutine.
type Batcher struct {
	pending       *domain.PendingBuffer
	maxBatchSize  int
	sendInterval  time.Duration
	intervalStart time.Time
	now           func() time.Time
}

// NewBatcher creates a new batcher with the given configuration.
func NewBatcher(maxBatchSize int, sendInterval time.Duration) *Batcher {
	return newBatcherWithClock(maxBatchSize, sendInterval, time.Now)
}

func newBatcherWithClock(maxBatchSize int, sendInterval time.Duration, now func() time.Time) *Batcher {
	if maxBatchSize <= 0 {
		maxBatchSize = domain.DefaultMaxBatchSize
	}
	return &Batcher{
		pending:       domain.NewPendingBuffer(),
		maxBatchSize:  maxBatchSize,
		sendInterval:  sendInterval,
		intervalStart: now(),
		now:           now,
	}
}

// Add appends a transaction to the pending buffer.
func (b *Batcher) Add(tx domain.Transaction) {
	b.pending.Push(tx)
}

// ShouldSend evaluates the flush policy against the current clock.
func (b *Batcher) ShouldSend() bool {
	return ShouldFlush(b.TimeSinceLastSend(), b.sendInterval, b.pending.Len(), b.maxBatchSize)
}

// Next builds the next batch and restarts the flush interval.
func (b *Batcher) Next(id string) domain.Batch {
	batch := BuildBatch(b.pending, b.maxBatchSize)
	batch.ID = id
	b.intervalStart = b.now()
	return batch
}

// HasPending returns true if there are transactions waiting to be sent.
func (b *Batcher) HasPending() bool {
	return b.pending.Len() > 0
}

// Pending returns the number of buffered transactions.
func (b *Batcher) Pending() int {
	return b.pending.Len()
}

// TimeSinceLastSend returns the duration since the interval last restarted.
func (b *Batcher) TimeSinceLastSend() time.Duration {
	return b.now().Sub(b.intervalStart)
}

// UntilDue returns how long until the send interval elapses; zero if it
// already has.
func (b *Batcher) UntilDue() time.Duration {
	d := b.sendInterval - b.TimeSinceLastSend()
	if d < 0 {
		return 0
	}
	return d
}
