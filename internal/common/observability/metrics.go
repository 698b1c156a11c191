// internal/common/observability/metrics.go
package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability owns the otel meter provider and the routing instruments.
// A zero value is usable and records nothing.
type Observability struct {
	meterProvider     *metric.MeterProvider
	meter             otelmetric.Meter
	jobCounter        otelmetric.Int64Counter
	jobDuration       otelmetric.Float64Histogram
	routingDuration   otelmetric.Float64Histogram
	routingConfidence otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	jobCounter, _ := meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)

	jobDuration, _ := meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)

	routingDuration, _ := meter.Float64Histogram(
		"routing.duration",
		otelmetric.WithDescription("Time spent resolving a report command"),
		otelmetric.WithUnit("ms"),
	)

	routingConfidence, _ := meter.Float64Histogram(
		"routing.confidence",
		otelmetric.WithDescription("Confidence of resolved report commands"),
		otelmetric.WithExplicitBucketBoundaries(0.3, 0.5, 0.7, 0.9, 1.0),
	)

	return &Observability{
		meterProvider:     provider,
		meter:             meter,
		jobCounter:        jobCounter,
		jobDuration:       jobDuration,
		routingDuration:   routingDuration,
		routingConfidence: routingConfidence,
	}
}

// RecordJobProcessed counts one handled job of taskType.
func (o *Observability) RecordJobProcessed(ctx context.Context, taskType string) {
	if o == nil || o.jobCounter == nil {
		return
	}
	o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
	))
}

func (o *Observability) RecordJobDuration(ctx context.Context, duration time.Duration, taskType string) {
	if o == nil || o.jobDuration == nil {
		return
	}
	o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
	))
}

// RecordRouting records one resolved command.
func (o *Observability) RecordRouting(ctx context.Context, duration time.Duration, reportType, source string, confidence float64) {
	if o == nil || o.routingDuration == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("report_type", reportType),
		attribute.String("source", source),
	)
	o.routingDuration.Record(ctx, float64(duration.Microseconds())/1000.0, attrs)
	o.routingConfidence.Record(ctx, confidence, attrs)
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
