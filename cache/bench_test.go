package cache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// BenchmarkMemoryStore_Get_Hit measures live hit performance.
func BenchmarkMemoryStore_Get_Hit(b *testing.B) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()
	_ = store.Set(ctx, "key", testResponse("value"))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.Get(ctx, "key")
	}
}

// BenchmarkMemoryStore_Get_Miss measures miss performance.
func BenchmarkMemoryStore_Get_Miss(b *testing.B) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.Get(ctx, "missing")
	}
}

// BenchmarkMemoryStore_Set measures write performance.
func BenchmarkMemoryStore_Set(b *testing.B) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()
	value := testResponse("value")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.Set(ctx, "key", value)
	}
}

// BenchmarkMiddleware_Hit measures the full decorator hit path.
func BenchmarkMiddleware_Hit(b *testing.B) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("payload"))
	})
	wrapped := New(WithTTL(time.Hour)).Wrap(handler)

	// Warm the entry.
	warm := httptest.NewRequest(http.MethodGet, "/bench", nil)
	wrapped.ServeHTTP(httptest.NewRecorder(), warm)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := httptest.NewRequest(http.MethodGet, "/bench", nil)
		wrapped.ServeHTTP(httptest.NewRecorder(), r)
	}
}

// BenchmarkDefaultKeyer measures key derivation.
func BenchmarkDefaultKeyer(b *testing.B) {
	keyer := NewDefaultKeyer()
	r := httptest.NewRequest(http.MethodGet, "/users?page=2", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = keyer.Key(r)
	}
}
