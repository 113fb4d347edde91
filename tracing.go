package hsm

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer starts a span for one dispatch and returns a finish callback
// that records its outcome. Neither the span nor the callback may alter
// what dispatch returns (SPEC_FULL.md S10).
type Tracer interface {
	StartDispatch(ctx context.Context, eventName string) (context.Context, func(found bool, err error))
}

// OtelTracer is the stock Tracer implementation, backed by an
// OpenTelemetry trace.Tracer.
type OtelTracer struct {
	tracer trace.Tracer
}

// NewOtelTracer wraps an existing OpenTelemetry tracer.
func NewOtelTracer(tracer trace.Tracer) *OtelTracer {
	return &OtelTracer{tracer: tracer}
}

// StartDispatch implements Tracer.
func (t *OtelTracer) StartDispatch(ctx context.Context, eventName string) (context.Context, func(found bool, err error)) {
	ctx, span := t.tracer.Start(ctx, "hsm.dispatch", trace.WithAttributes(
		attribute.String("hsm.event", eventName),
	))
	return ctx, func(found bool, err error) {
		span.SetAttributes(attribute.Bool("hsm.found", found))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
