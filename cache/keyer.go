package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Keyer derives cache keys from inbound requests.
//
// Contract:
// - Determinism: identical logical requests must produce equal keys, and
//   distinct logical cache partitions must produce distinct keys.
// - Purity: implementations must not mutate the request or keep state.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key returns the cache key for the request.
	Key(r *http.Request) string
}

// KeyerFunc adapts a plain function to the Keyer interface.
type KeyerFunc func(r *http.Request) string

// Key calls f(r).
func (f KeyerFunc) Key(r *http.Request) string { return f(r) }

// DefaultKeyer keys responses on the request method and URI.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key returns "<METHOD> <URI>", query string included.
func (k *DefaultKeyer) Key(r *http.Request) string {
	return r.Method + " " + r.URL.RequestURI()
}

// NewVaryKeyer returns a keyer that extends base with a digest of the named
// request headers, so responses that vary on those headers (Accept,
// Accept-Language, ...) populate distinct entries. A nil base uses the
// default keyer.
func NewVaryKeyer(base Keyer, headers ...string) Keyer {
	if base == nil {
		base = NewDefaultKeyer()
	}
	return KeyerFunc(func(r *http.Request) string {
		var b strings.Builder
		for _, name := range headers {
			b.WriteString(strings.ToLower(name))
			b.WriteString("=")
			b.WriteString(strings.Join(r.Header.Values(name), ","))
			b.WriteString(";")
		}
		return base.Key(r) + "|v=" + digest(b.String())
	})
}

// NewSubjectKeyer returns a keyer that partitions the cache per identity by
// folding the JWT subject claim from the Authorization bearer token into
// the base key. Requests without a parsable token or subject fall back to
// the base key unchanged. The token is not verified here; verification
// belongs to the authentication layer in front of the cache.
func NewSubjectKeyer(base Keyer) Keyer {
	if base == nil {
		base = NewDefaultKeyer()
	}
	parser := jwt.NewParser()
	return KeyerFunc(func(r *http.Request) string {
		key := base.Key(r)
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			return key
		}
		claims := jwt.MapClaims{}
		if _, _, err := parser.ParseUnverified(strings.TrimSpace(raw), claims); err != nil {
			return key
		}
		sub, err := claims.GetSubject()
		if err != nil || sub == "" {
			return key
		}
		return key + "|s=" + digest(sub)
	})
}

// digest returns a short hex digest keeping derived keys within
// MaxKeyLength regardless of header or claim size.
func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}

// Ensure the keyer implementations satisfy Keyer
var (
	_ Keyer = (*DefaultKeyer)(nil)
	_ Keyer = KeyerFunc(nil)
)
