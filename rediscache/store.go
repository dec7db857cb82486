package rediscache

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mkowalczyk/respcache/cache"
)

// DefaultRetention is how long entries physically persist in Redis when no
// retention is configured. It bounds how long a stale value stays
// servable.
const DefaultRetention = 24 * time.Hour

const defaultPrefix = "respcache:"

// entry is the wire form of a stored response.
type entry struct {
	StatusCode int         `json:"status"`
	Header     http.Header `json:"header"`
	Body       []byte      `json:"body"`
	CreatedAt  time.Time   `json:"created_at"`
	StoredAt   time.Time   `json:"stored_at"`
}

// Store keeps responses in Redis.
type Store struct {
	client    redis.UniversalClient
	ttl       time.Duration
	retention time.Duration
	prefix    string
}

// Option configures a Store.
type Option func(*Store)

// WithRetention sets how long entries persist in Redis past their logical
// TTL. Values below the TTL are raised to it.
func WithRetention(retention time.Duration) Option {
	return func(s *Store) { s.retention = retention }
}

// WithPrefix sets the Redis key prefix. The default is "respcache:".
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// New creates a Redis-backed store whose entries become stale after ttl.
func New(client redis.UniversalClient, ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		client:    client,
		ttl:       ttl,
		retention: DefaultRetention,
		prefix:    defaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.retention < ttl {
		s.retention = ttl
	}
	return s
}

// Get retrieves the response stored under key. Transport failures are
// reported as misses so only the affected request pays for them.
func (s *Store) Get(ctx context.Context, key string) (*cache.CachedResponse, bool) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, false
	}
	value := &cache.CachedResponse{
		StatusCode: e.StatusCode,
		Header:     e.Header,
		Body:       e.Body,
		CreatedAt:  e.CreatedAt,
	}
	return value, time.Now().After(e.StoredAt.Add(s.ttl))
}

// Set inserts or overwrites the entry under key, resetting its TTL.
func (s *Store) Set(ctx context.Context, key string, value *cache.CachedResponse) error {
	if value == nil {
		return cache.ErrNilValue
	}
	data, err := json.Marshal(entry{
		StatusCode: value.StatusCode,
		Header:     value.Header,
		Body:       value.Body,
		CreatedAt:  value.CreatedAt,
		StoredAt:   time.Now(),
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+key, data, s.retention).Err()
}

// Remove deletes the entry under key. Idempotent - no error on miss.
func (s *Store) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

// Ensure Store implements cache.Store
var _ cache.Store = (*Store)(nil)
