package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the default in-memory TTL store.
//
// Entries past their TTL are retained, not deleted, so the decorator can
// serve them under the stale-on-failure policy; they leave the store on
// overwrite, Remove, or capacity eviction. Get and Set clone values so
// callers never hold references into store-internal state.
type MemoryStore struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]*memoryEntry
}

type memoryEntry struct {
	value     *CachedResponse
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory store whose entries become stale
// after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]*memoryEntry),
	}
}

// NewBoundedMemoryStore creates an in-memory store holding at most
// maxEntries entries. When full, inserting a new key evicts the entry
// closest to expiry. maxEntries <= 0 means unbounded.
func NewBoundedMemoryStore(ttl time.Duration, maxEntries int) *MemoryStore {
	s := NewMemoryStore(ttl)
	s.maxEntries = maxEntries
	return s
}

// Get retrieves a copy of the value under key and whether it is past its
// TTL. Returns (nil, false) on miss.
func (s *MemoryStore) Get(_ context.Context, key string) (*CachedResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return entry.value.Clone(), time.Now().After(entry.expiresAt)
}

// Set inserts or overwrites the entry under key, resetting its TTL.
func (s *MemoryStore) Set(_ context.Context, key string, value *CachedResponse) error {
	if value == nil {
		return ErrNilValue
	}
	clone := value.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		if _, exists := s.entries[key]; !exists {
			s.evictLocked()
		}
	}
	s.entries[key] = &memoryEntry{
		value:     clone,
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

// Remove deletes the entry under key. Idempotent - no error on miss.
func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Len reports the number of entries currently held, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// evictLocked drops the entry closest to expiry. Callers hold s.mu.
func (s *MemoryStore) evictLocked() {
	var victim string
	var earliest time.Time
	for key, entry := range s.entries {
		if victim == "" || entry.expiresAt.Before(earliest) {
			victim = key
			earliest = entry.expiresAt
		}
	}
	if victim != "" {
		delete(s.entries, victim)
	}
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
