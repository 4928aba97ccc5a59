package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ainoio/ainoship/internal/domain"
	"github.com/ainoio/ainoship/internal/ports"
)

// DefaultSendTimeout bounds a single send attempt.
const DefaultSendTimeout = 30 * time.Second

// DispatcherConfig contains configuration for the dispatch loop.
type DispatcherConfig struct {
	SendInterval time.Duration
	MaxBatchSize int

	// SendTimeout bounds each send attempt; zero disables the bound.
	SendTimeout time.Duration

	// MaxRetries is the number of extra attempts for a failed batch.
	// Zero logs and drops the batch on the first failure.
	MaxRetries     int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// SendEventEmitter is called on send success or failure.
type SendEventEmitter interface {
	OnSendSuccess(batchID string, transactions int, duration time.Duration)
	// OnSendError reports a failed attempt. willRetry is false when the
	// batch is dropped.
	OnSendError(batchID string, err error, transactions int, willRetry bool)
}

// Dispatcher is the single background loop that drains the submission
// queue, batches transactions and hands them to the sender.
type Dispatcher struct {
	config  DispatcherConfig
	queue   *SubmissionQueue
	sender  ports.BatchSender
	logger  ports.Logger
	emitter SendEventEmitter
	batcher *Batcher
	newID   func() string
}

// NewDispatcher creates a dispatcher reading from queue.
func NewDispatcher(
	config DispatcherConfig,
	queue *SubmissionQueue,
	sender ports.BatchSender,
	logger ports.Logger,
	emitter SendEventEmitter,
) *Dispatcher {
	return &Dispatcher{
		config:  config,
		queue:   queue,
		sender:  sender,
		logger:  logger,
		emitter: emitter,
		batcher: NewBatcher(config.MaxBatchSize, config.SendInterval),
		newID:   uuid.NewString,
	}
}

// Run executes the dispatch loop until shutdown is requested (or the queue
// is closed) and every buffered transaction has been handed to the sender.
// Sends are never cancelled by ctx; it only carries values.
func (d *Dispatcher) Run(ctx context.Context) error {
	var msgs []message

	for {
		var closed, shutdown bool
		msgs, closed = d.queue.Drain(msgs[:0])
		for _, m := range msgs {
			switch m.kind {
			case msgEnqueue:
				d.batcher.Add(m.tx)
			case msgShutdown:
				shutdown = true
			}
		}
		clear(msgs)
		if cap(msgs) > retainedCap {
			msgs = nil
		}

		if shutdown || closed {
			break
		}

		if d.batcher.ShouldSend() {
			d.flush(ctx)
			continue
		}

		d.wait()
	}

	d.logger.Info("draining", ports.Int("pending", d.batcher.Pending()))
	for d.batcher.HasPending() {
		d.flush(ctx)
	}
	d.logger.Info("drain complete")

	return nil
}

// wait blocks until new messages arrive or the send interval elapses.
// With an empty buffer there is nothing to time out, so only the queue is
// watched.
func (d *Dispatcher) wait() {
	if !d.batcher.HasPending() {
		<-d.queue.Ready()
		return
	}

	timer := time.NewTimer(d.batcher.UntilDue())
	defer timer.Stop()

	select {
	case <-d.queue.Ready():
	case <-timer.C:
	}
}

// flush builds one batch and sends it.
func (d *Dispatcher) flush(ctx context.Context) {
	batch := d.batcher.Next(d.newID())
	if batch.Empty() {
		return
	}
	d.send(ctx, &batch)
}

// send transmits a batch, retrying up to MaxRetries times. A failed batch
// is logged and dropped; it never reaches producers.
func (d *Dispatcher) send(ctx context.Context, batch *domain.Batch) {
	bo := newBackoff(d.config.BackoffInitial, d.config.BackoffMax)

	for attempt := 0; ; attempt++ {
		start := time.Now()
		err := d.sendOnce(ctx, batch)
		duration := time.Since(start)

		if err == nil {
			d.logger.Info("sent batch",
				ports.String("batch_id", batch.ID),
				ports.Int("transactions", batch.Size()),
				ports.Duration("duration", duration),
			)
			if d.emitter != nil {
				d.emitter.OnSendSuccess(batch.ID, batch.Size(), duration)
			}
			return
		}

		willRetry := attempt < d.config.MaxRetries && retryable(err)
		d.logger.Error("send failed",
			ports.Err(err),
			ports.String("batch_id", batch.ID),
			ports.Int("transactions", batch.Size()),
			ports.Int("attempt", attempt+1),
		)
		if d.emitter != nil {
			d.emitter.OnSendError(batch.ID, err, batch.Size(), willRetry)
		}

		if !willRetry {
			d.logger.Warn("batch dropped",
				ports.String("batch_id", batch.ID),
				ports.Int("transactions", batch.Size()),
			)
			return
		}

		bo.Sleep()
	}
}

func (d *Dispatcher) sendOnce(ctx context.Context, batch *domain.Batch) error {
	sendCtx := context.WithoutCancel(ctx)
	if d.config.SendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(sendCtx, d.config.SendTimeout)
		defer cancel()
	}
	return d.sender.Send(sendCtx, batch)
}

// retryable reports whether err may succeed on another attempt. Errors opt
// out by implementing Retryable() bool.
func retryable(err error) bool {
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return true
}
