package cache

import (
	"context"
	"strings"
)

// Store is the contract for pluggable response stores.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Copies: values returned by Get and retained by Set must not alias
//   caller-held or store-internal storage.
// - Expiry: the store owns all TTL and eviction policy. Entries past their
//   TTL should remain retrievable (with expired=true) until overwritten,
//   removed, or evicted, so the decorator can serve them as stale values.
type Store interface {
	// Get retrieves the response stored under key. It returns (nil, false)
	// on a miss, (value, false) on a live hit, and (value, true) when the
	// entry is present but past its TTL.
	Get(ctx context.Context, key string) (*CachedResponse, bool)

	// Set inserts or overwrites the entry under key, resetting its TTL.
	Set(ctx context.Context, key string, value *CachedResponse) error

	// Remove deletes the entry under key. Idempotent - no error on miss.
	Remove(ctx context.Context, key string) error
}

// ValidateKey checks if a key is usable for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
