package providers

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by Get when the key does not exist
var ErrCacheMiss = errors.New("cache: key not found")

// CacheProvider defines the interface for caching operations
type CacheProvider interface {
	// Get retrieves a value from cache, returning ErrCacheMiss when absent
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// DeletePattern removes every key matching a glob pattern
	DeletePattern(ctx context.Context, pattern string) error

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, key string) (bool, error)

	// Increment atomically adds one to a counter and returns the new value.
	// The expiration starts when the counter is created.
	Increment(ctx context.Context, key string, expirationSeconds int) (int64, error)
}

// Cache keys and patterns shared by the read side and the invalidation service
const (
	CacheKeyAnalyticsSummary = "analytics:summary"
	CachePatternAnalytics    = "analytics:*"
	CachePatternHTTP         = "http:cache:*"
)
