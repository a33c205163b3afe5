package cache

import (
	"context"
	"time"

	"github.com/jonesrussell/assistant/internal/logger"
)

// Sweeper periodically removes cache keys whose TTL has lapsed. The backend's
// native expiry is the primary mechanism; the sweep covers backends that only
// honor TTLs lazily. An unreachable store is logged and retried on the next
// tick, never fatal.
type Sweeper struct {
	store    Store
	logger   logger.Logger
	interval time.Duration
	pattern  string
}

// NewSweeper creates a sweeper over the search-result key namespace.
func NewSweeper(store Store, log logger.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		logger:   log,
		interval: interval,
		pattern:  SearchKeyPrefix + "*",
	}
}

// Run sweeps on a fixed interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep removes every matching key with a non-positive remaining TTL.
func (s *Sweeper) sweep(ctx context.Context) {
	keys, err := s.store.Keys(ctx, s.pattern)
	if err != nil {
		s.logger.Warn("Cache sweep failed to list keys", logger.Error(err))
		return
	}

	removed := 0
	for _, key := range keys {
		ttl, ttlErr := s.store.TTL(ctx, key)
		if ttlErr != nil {
			s.logger.Warn("Cache sweep failed to read ttl",
				logger.String("key", key),
				logger.Error(ttlErr),
			)
			continue
		}

		if ttl > 0 {
			continue
		}

		if delErr := s.store.Del(ctx, key); delErr != nil {
			s.logger.Warn("Cache sweep failed to delete key",
				logger.String("key", key),
				logger.Error(delErr),
			)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("Removed expired cache entries",
			logger.Int("count", removed),
			logger.Int("scanned", len(keys)),
		)
	}
}
