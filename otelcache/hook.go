package otelcache

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/mkowalczyk/respcache/cache"
)

const scopeName = "github.com/mkowalczyk/respcache/otelcache"

// Hook instruments the cache decorator with traces and metrics.
//
// Spans wrap the handler call ("cache.handler") and each store operation
// ("cache.store.<op>"). The outcome counter tracks how requests resolve;
// failures of the observability pipeline never affect request handling.
type Hook struct {
	tracer      trace.Tracer
	outcomes    metric.Int64Counter
	storeOps    metric.Int64Counter
	handlerHist metric.Float64Histogram
}

// New creates a Hook. Nil providers fall back to the OpenTelemetry
// globals.
func New(tp trace.TracerProvider, mp metric.MeterProvider) (*Hook, error) {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(scopeName)

	outcomes, err := meter.Int64Counter(
		"cache.requests",
		metric.WithDescription("Requests resolved by the cache decorator, by outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	storeOps, err := meter.Int64Counter(
		"cache.store.ops",
		metric.WithDescription("Store operations issued by the cache decorator"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	handlerHist, err := meter.Float64Histogram(
		"cache.handler.duration_ms",
		metric.WithDescription("Wrapped handler duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &Hook{
		tracer:      tp.Tracer(scopeName),
		outcomes:    outcomes,
		storeOps:    storeOps,
		handlerHist: handlerHist,
	}, nil
}

// HandlerBegin opens the handler span. The span travels in the returned
// context to the handler and to HandlerEnd.
func (h *Hook) HandlerBegin(ctx context.Context, key string) context.Context {
	ctx, _ = h.tracer.Start(ctx, "cache.handler",
		trace.WithAttributes(attribute.String("cache.key", key)))
	return ctx
}

// HandlerEnd closes the handler span and records its duration.
func (h *Hook) HandlerEnd(ctx context.Context, _ string, status int, elapsed time.Duration) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.Int("http.response.status_code", status))
	if status < 200 || status >= 300 {
		span.SetStatus(codes.Error, "non-success response")
	}
	span.End()

	h.handlerHist.Record(ctx, float64(elapsed)/float64(time.Millisecond),
		metric.WithAttributes(attribute.Int("http.response.status_code", status)))
}

// StoreBegin opens a span for the store operation.
func (h *Hook) StoreBegin(ctx context.Context, op, key string) context.Context {
	ctx, _ = h.tracer.Start(ctx, "cache.store."+op,
		trace.WithAttributes(attribute.String("cache.key", key)))
	return ctx
}

// StoreEnd closes the store span, recording any error.
func (h *Hook) StoreEnd(ctx context.Context, op, _ string, err error) {
	span := trace.SpanFromContext(ctx)
	failed := err != nil
	if failed {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	h.storeOps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache.store.op", op),
		attribute.Bool("cache.store.error", failed),
	))
}

// Resolved counts the request under its outcome.
func (h *Hook) Resolved(ctx context.Context, _ string, outcome cache.Outcome) {
	h.outcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache.outcome", string(outcome)),
	))
}

// Ensure Hook implements cache.Hook
var _ cache.Hook = (*Hook)(nil)
