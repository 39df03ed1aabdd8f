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

type Observability struct {
	meterProvider      *metric.MeterProvider
	meter              otelmetric.Meter
	settlementCounter  otelmetric.Int64Counter
	settlementDuration otelmetric.Float64Histogram
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

	settlementCounter, _ := meter.Int64Counter(
		"settlements.processed",
		otelmetric.WithDescription("Number of submissions settled"),
	)

	settlementDuration, _ := meter.Float64Histogram(
		"settlements.duration",
		otelmetric.WithDescription("Settlement processing duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:      provider,
		meter:              meter,
		settlementCounter:  settlementCounter,
		settlementDuration: settlementDuration,
	}
}

func (o *Observability) RecordSettlement(ctx context.Context, verdict string) {
	if o.settlementCounter != nil {
		o.settlementCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("verdict", verdict),
		))
	}
}

func (o *Observability) RecordSettlementDuration(ctx context.Context, duration time.Duration, verdict string) {
	if o.settlementDuration != nil {
		o.settlementDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("verdict", verdict),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
