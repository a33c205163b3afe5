// Package guest implements per-client rate limiting for unauthenticated
// usage: a persisted counter with an expiring window, and the derived status
// consumed by chat gating and the UI.
package guest

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/assistant/internal/domain"
	"github.com/jonesrussell/assistant/internal/logger"
)

// KeyPrefix namespaces guest counters in the backing store.
const KeyPrefix = "guest_rate_limit:"

// Counter persists per-client message counts with an expiring window.
type Counter interface {
	// Increment atomically increments the counter for key and refreshes its
	// expiry window in one indivisible operation, returning the new count.
	// Atomicity is a correctness requirement: concurrent increments from the
	// same client must not lose the expiry or double-apply.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
	// Count returns the current count for key, 0 when absent.
	Count(ctx context.Context, key string) (int64, error)
}

// redisCounter implements Counter with a redis transaction pipeline so the
// INCR and EXPIRE land as one unit.
type redisCounter struct {
	client *redis.Client
}

// NewRedisCounter creates a Counter backed by redis.
func NewRedisCounter(client *redis.Client) Counter {
	return &redisCounter{client: client}
}

func (c *redisCounter) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("guest counter increment: %w", err)
	}
	return incr.Val(), nil
}

func (c *redisCounter) Count(ctx context.Context, key string) (int64, error) {
	val, err := c.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("guest counter read: %w", err)
	}
	return val, nil
}

// Limiter derives guest rate-limit status from the persisted counter. The
// status is recomputed on every call, never stored.
type Limiter struct {
	counter     Counter
	maxMessages int
	window      time.Duration
	logger      logger.Logger
}

// NewLimiter creates a guest rate limiter.
func NewLimiter(counter Counter, maxMessages int, window time.Duration, log logger.Logger) *Limiter {
	return &Limiter{
		counter:     counter,
		maxMessages: maxMessages,
		window:      window,
		logger:      log,
	}
}

func key(clientID string) string {
	return KeyPrefix + clientID
}

// Status returns the derived rate-limit status for a client. A store failure
// fails open (count 0) and is logged; availability problems must not lock
// guests out.
func (l *Limiter) Status(ctx context.Context, clientID string) domain.GuestRateLimitStatus {
	count, err := l.counter.Count(ctx, key(clientID))
	if err != nil {
		l.logger.Warn("Guest counter unavailable, failing open",
			logger.String("client_id", clientID),
			logger.Error(err),
		)
		count = 0
	}

	remaining := l.maxMessages - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return domain.GuestRateLimitStatus{
		Count:       int(count),
		Remaining:   remaining,
		CanSend:     int(count) < l.maxMessages,
		MaxMessages: l.maxMessages,
		WindowHours: l.window.Hours(),
	}
}

// CanSend reports whether the client is below the message cap.
func (l *Limiter) CanSend(ctx context.Context, clientID string) bool {
	return l.Status(ctx, clientID).CanSend
}

// Increment records an accepted message: the counter is incremented and its
// window refreshed atomically. A store failure fails open.
func (l *Limiter) Increment(ctx context.Context, clientID string) int64 {
	count, err := l.counter.Increment(ctx, key(clientID), l.window)
	if err != nil {
		l.logger.Warn("Guest counter increment failed",
			logger.String("client_id", clientID),
			logger.Error(err),
		)
		return 0
	}
	return count
}

// MaxMessages returns the configured message cap.
func (l *Limiter) MaxMessages() int {
	return l.maxMessages
}

// WindowHours returns the configured window length in hours.
func (l *Limiter) WindowHours() float64 {
	return l.window.Hours()
}
