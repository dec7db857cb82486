// Package cache provides an HTTP response caching decorator.
//
// It wraps an http.Handler, stores successful (2xx) responses in a
// pluggable Store keyed by request attributes, and serves repeated
// requests from the store while the entry is live. When an entry is past
// its TTL the wrapped handler is invoked again; if it fails, the stale
// value can be served instead under the stale-on-failure policy.
package cache
