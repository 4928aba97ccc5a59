package app

import (
	"time"

	"github.com/ainoio/ainoship/internal/domain"
)

// ShouldFlush decides whether the pending buffer is sent now. It never
// flushes an empty buffer, and flushes early once pending exceeds maxBatch.
func ShouldFlush(elapsed, interval time.Duration, pending, maxBatch int) bool {
	if pending <= 0 {
		return false
	}
	return elapsed >= interval || pending > maxBatch
}

// BuildBatch removes up to max transactions from the front of buf.
// An empty buffer yields an empty batch and is left untouched.
func BuildBatch(buf *domain.PendingBuffer, max int) domain.Batch {
	return domain.Batch{Transactions: buf.Take(max)}
}
