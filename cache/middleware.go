package cache

import (
	"context"
	"net/http"
	"time"
)

const (
	// DefaultBodyLimit is the default maximum materialized body size.
	DefaultBodyLimit int64 = 128 << 20

	// Unbounded disables the body size limit.
	Unbounded int64 = -1

	// DefaultTTL is the TTL used by the default store constructor when
	// none is configured.
	DefaultTTL = time.Minute

	// AgeHeader carries the age, in whole seconds, of a served cached
	// response when age annotation is enabled.
	AgeHeader = "X-Cache-Age"

	// InvalidateHeader forces removal of the request's entry before
	// lookup when invalidation is enabled. Its value is ignored.
	InvalidateHeader = "X-Invalidate-Cache"
)

// Middleware decorates http.Handlers with response caching. Successful
// (2xx) responses are stored under the request's key and replayed while
// live; everything else passes through uncached.
//
// There is no per-key single-flight: concurrent requests for an absent or
// expired key may each invoke the wrapped handler and each overwrite the
// store. The stale-hit path narrows that window by reinserting the stale
// value before refreshing, best effort only.
type Middleware struct {
	store             Store
	keyer             Keyer
	ttl               time.Duration
	limit             int64
	useStale          bool
	allowInvalidation bool
	annotate          bool
	hook              Hook
	logger            Logger
}

// New creates a Middleware. Without options it caches in memory for
// DefaultTTL, keyed on (method, URI), with a 128 MiB body limit and
// stale serving, invalidation, and age annotation all disabled.
func New(opts ...Option) *Middleware {
	m := &Middleware{
		keyer:  NewDefaultKeyer(),
		ttl:    DefaultTTL,
		limit:  DefaultBodyLimit,
		hook:   NopHook{},
		logger: NopLogger{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		m.store = NewMemoryStore(m.ttl)
	}
	return m
}

// Wrap returns a handler that serves next's responses through the cache.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := m.keyer.Key(r)
		if err := ValidateKey(key); err != nil {
			m.logger.Debug("bypassing cache", String("key", key), Err(err))
			m.hook.Resolved(ctx, key, OutcomeBypass)
			next.ServeHTTP(w, r)
			return
		}

		if m.allowInvalidation && hasHeader(r, InvalidateHeader) {
			m.storeRemove(ctx, key)
			m.logger.Debug("cache invalidated manually", String("key", key))
		}

		value, expired := m.storeGet(ctx, key)
		switch {
		case value != nil && !expired:
			m.hook.Resolved(ctx, key, OutcomeHit)
			value.write(w, m.annotate, time.Now())

		case value != nil && expired:
			// Reinsert the stale value immediately so concurrent requests
			// see a live entry instead of also scheduling a refresh. Best
			// effort, not a single-flight guarantee.
			m.storeSet(ctx, key, value)
			m.logger.Debug("stale value found, attempting refresh", String("key", key))

			rec := m.invoke(ctx, next, w, r, key, m.useStale)
			switch {
			case rec.success():
				m.finish(ctx, w, rec, key)
			case rec.streamed():
				// Failed refresh already forwarded; drop the entry.
				m.logger.Debug("refresh failed, evicting stale value", String("key", key))
				m.storeRemove(ctx, key)
				m.hook.Resolved(ctx, key, OutcomeMiss)
			default:
				// Failed refresh discarded; the reinserted value stands.
				m.logger.Debug("refresh failed, serving stale value", String("key", key))
				m.hook.Resolved(ctx, key, OutcomeStale)
				value.write(w, m.annotate, time.Now())
			}

		default:
			rec := m.invoke(ctx, next, w, r, key, false)
			if rec.streamed() {
				// Non-success responses pass through and are never stored.
				m.hook.Resolved(ctx, key, OutcomeMiss)
				return
			}
			m.finish(ctx, w, rec, key)
		}
	})
}

// invoke runs the wrapped handler into a fresh recorder, outside any store
// lock. dropFailed discards non-success output so a stale value can be
// served in its place.
func (m *Middleware) invoke(ctx context.Context, next http.Handler, w http.ResponseWriter, r *http.Request, key string, dropFailed bool) *recorder {
	rec := newRecorder(w, m.limit, dropFailed)
	hctx := m.hook.HandlerBegin(ctx, key)
	start := time.Now()
	next.ServeHTTP(rec, r.WithContext(hctx))
	rec.finalize()
	m.hook.HandlerEnd(hctx, key, rec.status, time.Since(start))
	return rec
}

// finish materializes a captured success response, stores it, and serves
// it. Oversized bodies become a synthetic 500 naming the limit, with no
// store write.
func (m *Middleware) finish(ctx context.Context, w http.ResponseWriter, rec *recorder, key string) {
	if rec.overflow {
		err := &BodyTooLargeError{Limit: m.limit}
		m.logger.Debug("discarding oversized response", String("key", key), Int64("limit", m.limit))
		m.hook.Resolved(ctx, key, OutcomeRejected)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	value := rec.snapshot(m.annotate)
	m.storeSet(ctx, key, value)
	m.hook.Resolved(ctx, key, OutcomeMiss)
	value.write(w, m.annotate, time.Now())
}

// Store accesses run inside the store's own short critical sections; a
// failed operation affects only the current request.

func (m *Middleware) storeGet(ctx context.Context, key string) (*CachedResponse, bool) {
	sctx := m.hook.StoreBegin(ctx, StoreOpGet, key)
	value, expired := m.store.Get(sctx, key)
	m.hook.StoreEnd(sctx, StoreOpGet, key, nil)
	return value, expired
}

func (m *Middleware) storeSet(ctx context.Context, key string, value *CachedResponse) {
	sctx := m.hook.StoreBegin(ctx, StoreOpSet, key)
	err := m.store.Set(sctx, key, value)
	m.hook.StoreEnd(sctx, StoreOpSet, key, err)
	if err != nil {
		m.logger.Error("cache store set failed", String("key", key), Err(err))
	}
}

func (m *Middleware) storeRemove(ctx context.Context, key string) {
	sctx := m.hook.StoreBegin(ctx, StoreOpRemove, key)
	err := m.store.Remove(sctx, key)
	m.hook.StoreEnd(sctx, StoreOpRemove, key, err)
	if err != nil {
		m.logger.Error("cache store remove failed", String("key", key), Err(err))
	}
}

// hasHeader reports presence of the header regardless of its value.
func hasHeader(r *http.Request, name string) bool {
	_, ok := r.Header[http.CanonicalHeaderKey(name)]
	return ok
}
