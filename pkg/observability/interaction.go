package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "github.com/Alijeyrad/formsbot/pkg/observability"
)

// Interactions instruments chat interaction handlers with a span, a counter
// and a duration histogram.
type Interactions struct {
	tracer   trace.Tracer
	count    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewInteractions binds to the global tracer and meter providers, so call it
// after InitTelemetry.
func NewInteractions() *Interactions {
	meter := otel.Meter(tracerName)

	count, _ := meter.Int64Counter(
		"discord_interaction_count",
		metric.WithDescription("Total number of handled interactions"),
		metric.WithUnit("{interaction}"),
	)
	duration, _ := meter.Float64Histogram(
		"discord_interaction_duration_ms",
		metric.WithDescription("Interaction handling duration in milliseconds"),
		metric.WithUnit("ms"),
	)

	return &Interactions{
		tracer:   otel.Tracer(tracerName),
		count:    count,
		duration: duration,
	}
}

// Track runs fn inside a span named "<kind> <name>" and records its outcome.
func (i *Interactions) Track(ctx context.Context, kind, name string, fn func(ctx context.Context) error) error {
	ctx, span := i.tracer.Start(ctx, kind+" "+name,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("discord.interaction.kind", kind),
			attribute.String("discord.interaction.name", name),
		),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("name", name),
		attribute.String("outcome", outcome),
	)
	i.count.Add(ctx, 1, attrs)
	i.duration.Record(ctx, elapsed, attrs)

	return err
}
