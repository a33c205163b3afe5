// Package cache provides the result cache used by the search pipeline. Two
// interchangeable backends implement the Store contract: a direct-protocol
// redis client and an Upstash-style REST client. Callers never branch on the
// concrete backend; selection happens once at startup.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// SearchKeyPrefix is the key namespace for cached search results.
const SearchKeyPrefix = "exa-search:"

// Store is the cache contract. All operations are best-effort from the
// caller's perspective: a Store error must degrade to a miss or a no-op,
// never fail the request.
type Store interface {
	// Get returns the value for key, or ErrCacheMiss if absent.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Keys returns all keys matching the glob pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)
	// TTL returns the remaining lifetime of key. Negative when the key is
	// absent or has no expiry.
	TTL(ctx context.Context, key string) (time.Duration, error)
	// Del removes key.
	Del(ctx context.Context, key string) error
	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}
