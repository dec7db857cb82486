package cache

import (
	"net/http"
	"strconv"
	"time"
)

// CachedResponse is an immutable snapshot of a handler response: status,
// headers, fully materialized body, and an optional creation timestamp.
// Updates replace the stored entry wholesale; a constructed value is never
// mutated in place.
type CachedResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	// CreatedAt is the storage time. It is zero unless age annotation is
	// enabled on the decorator that stored the value.
	CreatedAt time.Time
}

// Clone returns a deep copy sharing no storage with the receiver.
func (r *CachedResponse) Clone() *CachedResponse {
	if r == nil {
		return nil
	}
	clone := &CachedResponse{
		StatusCode: r.StatusCode,
		Header:     r.Header.Clone(),
		CreatedAt:  r.CreatedAt,
	}
	if r.Body != nil {
		clone.Body = make([]byte, len(r.Body))
		copy(clone.Body, r.Body)
	}
	return clone
}

// Age returns the whole seconds elapsed since the response was stored,
// or 0 when no creation timestamp was recorded.
func (r *CachedResponse) Age(now time.Time) int64 {
	if r.CreatedAt.IsZero() {
		return 0
	}
	elapsed := now.Sub(r.CreatedAt)
	if elapsed < 0 {
		return 0
	}
	return int64(elapsed.Seconds())
}

// write replays the snapshot into w. The age header is informational only;
// it never drives the hit/stale decision.
func (r *CachedResponse) write(w http.ResponseWriter, annotate bool, now time.Time) {
	copyHeader(w.Header(), r.Header)
	if annotate && !r.CreatedAt.IsZero() {
		w.Header().Set(AgeHeader, strconv.FormatInt(r.Age(now), 10))
	}
	w.WriteHeader(r.StatusCode)
	if len(r.Body) > 0 {
		_, _ = w.Write(r.Body)
	}
}

func copyHeader(dst, src http.Header) {
	for name, values := range src {
		for _, value := range values {
			dst.Add(name, value)
		}
	}
}
