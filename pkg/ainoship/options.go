package ainoship

import (
	"go.opentelemetry.io/otel/metric"

	"github.com/ainoio/ainoship/internal/ports"
)

// HTTPClient is the interface for making HTTP requests.
// *http.Client satisfies this interface.
type HTTPClient = ports.HTTPClient

// Logger is the interface for structured logging.
type Logger = ports.Logger

// LogField represents a structured log field.
type LogField = ports.Field

// Sender transmits one batch. Implement it to replace the HTTP transport.
type Sender = ports.BatchSender

// Option configures optional behavior of an Agent.
type Option func(*options)

type options struct {
	httpClient    ports.HTTPClient
	logger        ports.Logger
	sender        ports.BatchSender
	eventHandler  EventHandler
	meterProvider metric.MeterProvider
}

// WithHTTPClient sets the client used by the default HTTP transport.
// If not provided, a client instrumented with otelhttp is used.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSender replaces the HTTP transport. The agent does not close it.
func WithSender(sender Sender) Option {
	return func(o *options) {
		o.sender = sender
	}
}

// WithEventHandler sets a handler for agent events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithMeterProvider records dispatch metrics on the given provider.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = provider
	}
}
