package cache

import (
	"bytes"
	"net/http"
	"time"
)

// writeMode selects what the recorder does with the handler's output once
// the status code is known.
type writeMode int

const (
	modeUnset writeMode = iota
	// modeCapture materializes the body into a bounded buffer for storage.
	modeCapture
	// modePassthrough streams the response to the client unmodified.
	modePassthrough
	// modeDiscard drops the response; a stale value will replace it.
	modeDiscard
)

// recorder is the ResponseWriter handed to the wrapped handler. Success
// (2xx) output is captured for storage; non-success output is streamed
// through untouched, or discarded when the decorator will serve a stale
// value instead. The mode is fixed at WriteHeader time.
type recorder struct {
	dst        http.ResponseWriter
	header     http.Header
	limit      int64
	dropFailed bool

	mode     writeMode
	status   int
	body     bytes.Buffer
	overflow bool
}

func newRecorder(dst http.ResponseWriter, limit int64, dropFailed bool) *recorder {
	return &recorder{
		dst:        dst,
		header:     make(http.Header),
		limit:      limit,
		dropFailed: dropFailed,
		status:     http.StatusOK,
	}
}

func (r *recorder) Header() http.Header {
	return r.header
}

func (r *recorder) WriteHeader(status int) {
	if r.mode != modeUnset {
		return
	}
	r.status = status
	switch {
	case isSuccess(status):
		r.mode = modeCapture
	case r.dropFailed:
		r.mode = modeDiscard
	default:
		r.mode = modePassthrough
		copyHeader(r.dst.Header(), r.header)
		r.dst.WriteHeader(status)
	}
}

func (r *recorder) Write(p []byte) (int, error) {
	if r.mode == modeUnset {
		r.WriteHeader(http.StatusOK)
	}
	switch r.mode {
	case modePassthrough:
		return r.dst.Write(p)
	case modeDiscard:
		return len(p), nil
	}
	if r.overflow {
		return len(p), nil
	}
	if r.limit >= 0 && int64(r.body.Len())+int64(len(p)) > r.limit {
		r.overflow = true
		r.body.Reset()
		return len(p), nil
	}
	return r.body.Write(p)
}

// Flush forwards flushes only while streaming through. Captured output is
// not visible to the client until the decorator decides what to serve.
func (r *recorder) Flush() {
	if r.mode != modePassthrough {
		return
	}
	if f, ok := r.dst.(http.Flusher); ok {
		f.Flush()
	}
}

// finalize settles the implicit 200 for handlers that never wrote.
func (r *recorder) finalize() {
	if r.mode == modeUnset {
		r.WriteHeader(http.StatusOK)
	}
}

func (r *recorder) success() bool {
	return isSuccess(r.status)
}

// streamed reports whether the response already reached the client.
func (r *recorder) streamed() bool {
	return r.mode == modePassthrough
}

// snapshot builds the CachedResponse from the captured output. Only valid
// in capture mode without overflow.
func (r *recorder) snapshot(annotate bool) *CachedResponse {
	body := make([]byte, r.body.Len())
	copy(body, r.body.Bytes())
	value := &CachedResponse{
		StatusCode: r.status,
		Header:     r.header.Clone(),
		Body:       body,
	}
	if annotate {
		value.CreatedAt = time.Now()
	}
	return value
}

// isSuccess reports whether status is in the cacheable success class.
// Redirects and all other non-2xx codes count as failures for caching.
func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

var (
	_ http.ResponseWriter = (*recorder)(nil)
	_ http.Flusher        = (*recorder)(nil)
)
