// Package otel records dispatch metrics with OpenTelemetry instruments.
package otel

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of the agent's instruments.
const MeterName = "github.com/ainoio/ainoship"

// MetricsEmitter implements the dispatcher's send event emitter on top of a
// metric.Meter.
type MetricsEmitter struct {
	batchesSent      metric.Int64Counter
	batchesFailed    metric.Int64Counter
	batchesDropped   metric.Int64Counter
	transactionsSent metric.Int64Counter
	transactionsLost metric.Int64Counter
	sendDuration     metric.Float64Histogram
	stateTransitions metric.Int64Counter
}

// NewMetricsEmitter creates the instruments on meter.
func NewMetricsEmitter(meter metric.Meter) (*MetricsEmitter, error) {
	var (
		m   MetricsEmitter
		err error
	)

	if m.batchesSent, err = meter.Int64Counter("ainoship_batches_sent_total",
		metric.WithDescription("Batches accepted by the transport")); err != nil {
		return nil, fmt.Errorf("create batches sent counter: %w", err)
	}
	if m.batchesFailed, err = meter.Int64Counter("ainoship_batch_send_errors_total",
		metric.WithDescription("Failed send attempts, including retried ones")); err != nil {
		return nil, fmt.Errorf("create send errors counter: %w", err)
	}
	if m.batchesDropped, err = meter.Int64Counter("ainoship_batches_dropped_total",
		metric.WithDescription("Batches discarded after their final failed attempt")); err != nil {
		return nil, fmt.Errorf("create batches dropped counter: %w", err)
	}
	if m.transactionsSent, err = meter.Int64Counter("ainoship_transactions_sent_total",
		metric.WithDescription("Transactions delivered to the transport")); err != nil {
		return nil, fmt.Errorf("create transactions sent counter: %w", err)
	}
	if m.transactionsLost, err = meter.Int64Counter("ainoship_transactions_dropped_total",
		metric.WithDescription("Transactions lost with dropped batches")); err != nil {
		return nil, fmt.Errorf("create transactions dropped counter: %w", err)
	}
	if m.sendDuration, err = meter.Float64Histogram("ainoship_send_duration_seconds",
		metric.WithDescription("Duration of successful batch sends in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("create send duration histogram: %w", err)
	}
	if m.stateTransitions, err = meter.Int64Counter("ainoship_state_transitions_total",
		metric.WithDescription("Agent lifecycle transitions")); err != nil {
		return nil, fmt.Errorf("create state transitions counter: %w", err)
	}

	return &m, nil
}

// OnSendSuccess records a delivered batch.
func (m *MetricsEmitter) OnSendSuccess(batchID string, transactions int, duration time.Duration) {
	ctx := context.Background()
	m.batchesSent.Add(ctx, 1)
	m.transactionsSent.Add(ctx, int64(transactions))
	m.sendDuration.Record(ctx, duration.Seconds())
}

// OnSendError records a failed attempt and, when no retry follows, the loss.
func (m *MetricsEmitter) OnSendError(batchID string, err error, transactions int, willRetry bool) {
	ctx := context.Background()
	m.batchesFailed.Add(ctx, 1, metric.WithAttributes(attribute.Bool("will_retry", willRetry)))
	if !willRetry {
		m.batchesDropped.Add(ctx, 1)
		m.transactionsLost.Add(ctx, int64(transactions))
	}
}

// OnStateChange counts lifecycle transitions by target state.
func (m *MetricsEmitter) OnStateChange(previous, current string) {
	m.stateTransitions.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String("from", previous),
			attribute.String("to", current),
		))
}
