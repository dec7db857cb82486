package s3cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/mkowalczyk/respcache/cache"
)

const storedAtMetaKey = "stored-at"

// Client is the subset of the S3 API the store uses. *s3.Client
// satisfies it.
type Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// entry is the object body of a stored response.
type entry struct {
	StatusCode int         `json:"status"`
	Header     http.Header `json:"header"`
	Body       []byte      `json:"body"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Store keeps responses as JSON objects in an S3 bucket.
type Store struct {
	bucket string
	prefix string
	ttl    time.Duration
	client Client
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the object key prefix inside the bucket.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// New creates an S3-backed store whose entries become stale after ttl.
func New(client Client, bucket string, ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		client: client,
		bucket: bucket,
		prefix: "respcache/",
		ttl:    ttl,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get retrieves the response stored under key. Transport failures are
// reported as misses so only the affected request pays for them.
func (s *Store) Get(ctx context.Context, key string) (*cache.CachedResponse, bool) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return nil, false
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
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
	storedAt := parseStoredAt(out.Metadata)
	return value, time.Now().After(storedAt.Add(s.ttl))
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
	})
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			storedAtMetaKey: strconv.FormatInt(time.Now().UnixNano(), 10),
		},
	})
	return err
}

// Remove deletes the entry under key. Deleting an absent object is a
// no-op in S3, so Remove is idempotent.
func (s *Store) Remove(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil && isNotFound(err) {
		return nil
	}
	return err
}

// objectKey hashes cache keys into flat, S3-safe object names.
func (s *Store) objectKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return s.prefix + hex.EncodeToString(sum[:])
}

// parseStoredAt returns the zero time for objects without a readable
// timestamp, which makes them stale on read.
func parseStoredAt(meta map[string]string) time.Time {
	val, ok := meta[storedAtMetaKey]
	if !ok {
		return time.Time{}
	}
	nanos, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(0, nanos)
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	return errors.As(err, &nsk)
}

// Ensure Store implements cache.Store
var _ cache.Store = (*Store)(nil)
