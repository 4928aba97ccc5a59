// Package telemetry wires the OpenTelemetry metric pipeline for the CLI.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// DefaultExportInterval is how often metrics are pushed to the collector.
const DefaultExportInterval = 15 * time.Second

// ShutdownFunc flushes and stops the pipeline.
type ShutdownFunc func(context.Context) error

// Config selects where metrics go.
type Config struct {
	// Endpoint is the OTLP/HTTP metrics URL, e.g.
	// http://localhost:4318/v1/metrics. Empty disables export.
	Endpoint       string
	ServiceName    string
	ServiceVersion string
	Interval       time.Duration
}

// Setup builds a MeterProvider exporting over OTLP/HTTP and installs it as
// the global provider. With no endpoint it returns a no-op provider.
func Setup(ctx context.Context, cfg Config) (metric.MeterProvider, ShutdownFunc, error) {
	if cfg.Endpoint == "" {
		return noop.NewMeterProvider(), func(context.Context) error { return nil }, nil
	}

	exporter, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(cfg.Endpoint))
	if err != nil {
		return nil, nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("build resource: %w", err)
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultExportInterval
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp)

	return mp, mp.Shutdown, nil
}
