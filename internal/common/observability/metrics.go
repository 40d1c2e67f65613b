package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/otlptranslator"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records per-stage import timings through OpenTelemetry and
// exposes them on a Prometheus registerer.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	stageDuration otelmetric.Float64Histogram
	stageFailures otelmetric.Int64Counter
}

// New returns a working instance, or an inert one when the exporter cannot
// be registered. Recording methods are safe on a nil receiver.
func New(serviceName string, reg prometheus.Registerer) (*Observability, error) {
	// dotted instrument names are exported with underscores
	exporter, err := otelprom.New(
		otelprom.WithRegisterer(reg),
		otelprom.WithTranslationStrategy(otlptranslator.UnderscoreEscapingWithSuffixes),
	)
	if err != nil {
		return &Observability{}, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	stageDuration, err := meter.Float64Histogram(
		"import.stage.duration",
		otelmetric.WithDescription("Duration of one import stage"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return &Observability{meterProvider: provider}, err
	}

	stageFailures, err := meter.Int64Counter(
		"import.stage.failures",
		otelmetric.WithDescription("Import stages that returned an error"),
	)
	if err != nil {
		return &Observability{meterProvider: provider}, err
	}

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		stageDuration: stageDuration,
		stageFailures: stageFailures,
	}, nil
}

// Stage starts timing a stage; call the returned func with the stage error.
func (o *Observability) Stage(ctx context.Context, stage string) func(err error) {
	start := time.Now()
	return func(err error) {
		o.RecordStage(ctx, stage, time.Since(start), err)
	}
}

func (o *Observability) RecordStage(ctx context.Context, stage string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("stage", stage))
	if o.stageDuration != nil {
		o.stageDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	}
	if err != nil && o.stageFailures != nil {
		o.stageFailures.Add(ctx, 1, attrs)
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
