// Package otelcache provides an OpenTelemetry cache.Hook.
//
// It traces the wrapped handler call and each store operation, counts
// requests by outcome, and records handler durations. Providers default to
// the global OpenTelemetry providers, so with no SDK configured the hook
// is a no-op.
package otelcache
