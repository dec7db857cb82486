package cache

import (
	"net/http"
	"time"
)

// Option configures a Middleware. All configuration is fixed at
// construction; a built Middleware is immutable.
type Option func(*Middleware)

// WithStore sets the backing store. The default is an in-memory TTL store.
func WithStore(store Store) Option {
	return func(m *Middleware) { m.store = store }
}

// WithKeyer sets the keyer deriving cache keys from requests. The default
// keys on (method, URI).
func WithKeyer(keyer Keyer) Option {
	return func(m *Middleware) { m.keyer = keyer }
}

// WithKeyerFunc sets a plain function as the keyer.
func WithKeyerFunc(f func(r *http.Request) string) Option {
	return WithKeyer(KeyerFunc(f))
}

// WithTTL sets the TTL used by the default store constructor. It has no
// effect when WithStore supplies a store, which then owns expiry itself.
func WithTTL(ttl time.Duration) Option {
	return func(m *Middleware) { m.ttl = ttl }
}

// WithStaleOnFailure keeps serving the last successful response when the
// entry has expired and the wrapped handler fails to produce a new
// successful one.
func WithStaleOnFailure() Option {
	return func(m *Middleware) { m.useStale = true }
}

// WithBodyLimit changes the maximum materialized body size in bytes.
// Use Unbounded to disable the limit.
func WithBodyLimit(limit int64) Option {
	return func(m *Middleware) { m.limit = limit }
}

// WithInvalidation allows manual invalidation through the
// X-Invalidate-Cache request header. Disabled by default: arbitrary
// invalidation lets any caller force expensive downstream work.
func WithInvalidation() Option {
	return func(m *Middleware) { m.allowInvalidation = true }
}

// WithAgeHeader annotates served cached responses with the X-Cache-Age
// header carrying their age in whole seconds.
func WithAgeHeader() Option {
	return func(m *Middleware) { m.annotate = true }
}

// WithHook sets the observability hook. The default is NopHook.
func WithHook(hook Hook) Option {
	return func(m *Middleware) { m.hook = hook }
}

// WithLogger sets the debug logger. The default is NopLogger.
func WithLogger(logger Logger) Option {
	return func(m *Middleware) { m.logger = logger }
}
