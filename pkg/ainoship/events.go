package ainoship

import (
	"time"

	otelAdapter "github.com/ainoio/ainoship/internal/adapters/otel"
	"github.com/ainoio/ainoship/internal/app"
)

// EventHandler receives notifications about agent operations.
// Methods are called synchronously from the dispatch goroutine (send events)
// or from the goroutine changing state, so they should return quickly.
// Handlers may call Status, Submit and Start, but must not call Stop or
// StopContext, which wait for the dispatch loop.
type EventHandler interface {
	// OnStateChange is called after every lifecycle transition.
	OnStateChange(event StateChangeEvent)

	// OnSendSuccess is called after a batch was accepted by the transport.
	OnSendSuccess(event SendSuccessEvent)

	// OnSendError is called after every failed send attempt.
	OnSendError(event SendErrorEvent)
}

// StateChangeEvent describes a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// SendSuccessEvent describes a delivered batch.
type SendSuccessEvent struct {
	BatchID      string
	Transactions int
	Duration     time.Duration
}

// SendErrorEvent describes a failed send attempt.
// WillRetry is false when the batch was dropped.
type SendErrorEvent struct {
	BatchID      string
	Error        error
	Transactions int
	WillRetry    bool
}

// BaseEventHandler provides no-op implementations of every EventHandler
// method. Embed it to implement only the events you need.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent) {}
func (BaseEventHandler) OnSendSuccess(SendSuccessEvent) {}
func (BaseEventHandler) OnSendError(SendErrorEvent)     {}

// eventEmitterWrapper adapts EventHandler and the metrics emitter to the
// internal emitter interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
	metrics *otelAdapter.MetricsEmitter
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.metrics != nil {
		e.metrics.OnStateChange(previous.String(), current.String())
	}
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnSendSuccess(batchID string, transactions int, duration time.Duration) {
	if e.metrics != nil {
		e.metrics.OnSendSuccess(batchID, transactions, duration)
	}
	if e.handler == nil {
		return
	}
	e.handler.OnSendSuccess(SendSuccessEvent{
		BatchID:      batchID,
		Transactions: transactions,
		Duration:     duration,
	})
}

func (e *eventEmitterWrapper) OnSendError(batchID string, err error, transactions int, willRetry bool) {
	if e.metrics != nil {
		e.metrics.OnSendError(batchID, err, transactions, willRetry)
	}
	if e.handler == nil {
		return
	}
	e.handler.OnSendError(SendErrorEvent{
		BatchID:      batchID,
		Error:        err,
		Transactions: transactions,
		WillRetry:    willRetry,
	})
}
