// Package rediscache provides a Redis-backed cache.Store.
//
// Entries are serialized as JSON and kept in Redis for a retention window
// longer than their logical TTL, so values past the TTL remain servable
// under the stale-on-failure policy. Staleness is computed from a
// stored-at timestamp, not from Redis key expiry, which only bounds how
// long dead entries linger.
package rediscache
