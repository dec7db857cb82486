package cache

import (
	"context"
	"time"
)

// Outcome classifies how the decorator resolved a request.
type Outcome string

const (
	// OutcomeHit means a live value was served without invoking the handler.
	OutcomeHit Outcome = "hit"
	// OutcomeStale means a stale value was served after a failed refresh.
	OutcomeStale Outcome = "stale"
	// OutcomeMiss means the wrapped handler produced the response.
	OutcomeMiss Outcome = "miss"
	// OutcomeBypass means caching was skipped for the request.
	OutcomeBypass Outcome = "bypass"
	// OutcomeRejected means the handler body exceeded the configured limit.
	OutcomeRejected Outcome = "rejected"
)

// Store operation names passed to Hook store callbacks.
const (
	StoreOpGet    = "get"
	StoreOpSet    = "set"
	StoreOpRemove = "remove"
)

// Hook observes decorator activity around the wrapped handler call and
// around store operations. It is optional and carries no correctness
// weight; the decorator works identically with the no-op hook.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic; observability failures must
//   not affect request handling.
type Hook interface {
	// HandlerBegin is called before the wrapped handler is invoked. The
	// returned context is propagated to the handler and to HandlerEnd.
	HandlerBegin(ctx context.Context, key string) context.Context

	// HandlerEnd is called after the wrapped handler returns.
	HandlerEnd(ctx context.Context, key string, status int, elapsed time.Duration)

	// StoreBegin is called before a store operation (get, set, remove).
	// The returned context is passed to the store and to StoreEnd.
	StoreBegin(ctx context.Context, op, key string) context.Context

	// StoreEnd is called after the store operation completes.
	StoreEnd(ctx context.Context, op, key string, err error)

	// Resolved records how the request was ultimately answered.
	Resolved(ctx context.Context, key string, outcome Outcome)
}

// NopHook is a Hook that does nothing.
type NopHook struct{}

func (NopHook) HandlerBegin(ctx context.Context, _ string) context.Context { return ctx }

func (NopHook) HandlerEnd(context.Context, string, int, time.Duration) {}

func (NopHook) StoreBegin(ctx context.Context, _, _ string) context.Context { return ctx }

func (NopHook) StoreEnd(context.Context, string, string, error) {}

func (NopHook) Resolved(context.Context, string, Outcome) {}

// Ensure NopHook implements Hook
var _ Hook = NopHook{}
