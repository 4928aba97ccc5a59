package app

import (
	"sync"

	"github.com/ainoio/ainoship/internal/domain"
)

type messageKind int

const (
	msgEnqueue messageKind = iota
	msgShutdown
)

// retainedCap is the largest backing array kept after a drain. Anything
// bigger came from a burst and is released.
const retainedCap = 1024

// message is one item on the submission queue.
type message struct {
	kind messageKind
	tx   domain.Transaction
}

// SubmissionQueue is the unbounded multi-producer, single-consumer channel
// between producers and the dispatch loop. Producers never block on it.
// Once shutdown is requested the queue is closed and rejects new records.
type SubmissionQueue struct {
	mu     sync.Mutex
	msgs   []message
	closed bool
	ready  chan struct{}
}

// NewSubmissionQueue creates an open, empty queue.
func NewSubmissionQueue() *SubmissionQueue {
	return &SubmissionQueue{ready: make(chan struct{}, 1)}
}

// Enqueue appends a transaction. Returns ErrAgentClosed once the queue is closed.
func (q *SubmissionQueue) Enqueue(tx domain.Transaction) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return domain.ErrAgentClosed
	}
	q.msgs = append(q.msgs, message{kind: msgEnqueue, tx: tx})
	q.mu.Unlock()

	q.notify()
	return nil
}

// RequestShutdown appends the shutdown marker and closes the queue in one
// step, so the marker is always the last message the consumer sees.
func (q *SubmissionQueue) RequestShutdown() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return domain.ErrAgentClosed
	}
	q.msgs = append(q.msgs, message{kind: msgShutdown})
	q.closed = true
	q.mu.Unlock()

	q.notify()
	return nil
}

// Close closes the queue without a shutdown marker. The consumer treats a
// closed queue the same as a shutdown request.
func (q *SubmissionQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.notify()
}

// Drain moves every available message onto dst and reports whether the
// queue is closed. It never blocks.
func (q *SubmissionQueue) Drain(dst []message) ([]message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	dst = append(dst, q.msgs...)
	if cap(q.msgs) > retainedCap {
		q.msgs = nil
	} else {
		clear(q.msgs)
		q.msgs = q.msgs[:0]
	}
	return dst, q.closed
}

// Ready returns a channel that receives after messages are added or the
// queue is closed. Wakeups may be spurious.
func (q *SubmissionQueue) Ready() <-chan struct{} {
	return q.ready
}

// Len returns the number of undrained messages.
func (q *SubmissionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.msgs)
}

// Closed reports whether the queue rejects new records.
func (q *SubmissionQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

func (q *SubmissionQueue) notify() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
