package cache_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/mkowalczyk/respcache/cache"
)

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func ExampleNew() {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, "Hello, world!")
	})

	cached := cache.New(cache.WithTTL(time.Minute)).Wrap(handler)

	fmt.Println(serve(cached, "/hello").Body.String())
	fmt.Println(serve(cached, "/hello").Body.String())
	fmt.Println("handler calls:", calls)
	// Output:
	// Hello, world!
	// Hello, world!
	// handler calls: 1
}

func ExampleWithStaleOnFailure() {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			fmt.Fprint(w, "fresh data")
			return
		}
		http.Error(w, "backend down", http.StatusInternalServerError)
	})

	cached := cache.New(
		cache.WithStore(cache.NewMemoryStore(30*time.Millisecond)),
		cache.WithStaleOnFailure(),
	).Wrap(handler)

	fmt.Println(serve(cached, "/data").Code)
	time.Sleep(40 * time.Millisecond)

	// The refresh fails, so the stale success is served instead.
	resp := serve(cached, "/data")
	fmt.Println(resp.Code, resp.Body.String())
	// Output:
	// 200
	// 200 fresh data
}

func ExampleKeyerFunc() {
	// Partition the cache per API version header in addition to the path.
	keyer := cache.KeyerFunc(func(r *http.Request) string {
		return r.Method + " " + r.URL.Path + " v=" + r.Header.Get("X-Api-Version")
	})

	r := httptest.NewRequest(http.MethodGet, "/items", nil)
	r.Header.Set("X-Api-Version", "2")
	fmt.Println(keyer.Key(r))
	// Output:
	// GET /items v=2
}
