package cache

import (
	"errors"
	"fmt"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrNilValue   = errors.New("cache: value is nil")
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)

// BodyTooLargeError reports a handler response body that exceeded the
// configured materialization limit. The decorator converts it into a
// synthetic 500 response whose message names the limit.
type BodyTooLargeError struct {
	Limit int64
}

func (e *BodyTooLargeError) Error() string {
	return fmt.Sprintf("cache: response body too large, over %d bytes", e.Limit)
}
