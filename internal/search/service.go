// Package search orchestrates the advanced-search pipeline: cache lookup,
// provider call, relevance ranking, and cache write-back.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jonesrussell/assistant/internal/cache"
	"github.com/jonesrussell/assistant/internal/config"
	"github.com/jonesrussell/assistant/internal/domain"
	"github.com/jonesrussell/assistant/internal/logger"
	"github.com/jonesrussell/assistant/internal/relevance"
	"github.com/jonesrussell/assistant/internal/telemetry"
)

// Provider is the search provider boundary. The adapter degrades internally,
// so Search always yields a result set (possibly empty).
type Provider interface {
	Search(ctx context.Context, req *domain.SearchRequest) *domain.SearchResults
}

// Service runs the search aggregation pipeline.
type Service struct {
	provider Provider
	store    cache.Store
	config   *config.Config
	logger   logger.Logger
	metrics  *telemetry.Metrics
}

// NewService creates a new search service.
func NewService(provider Provider, store cache.Store, cfg *config.Config, log logger.Logger, metrics *telemetry.Metrics) *Service {
	return &Service{
		provider: provider,
		store:    store,
		config:   cfg,
		logger:   log,
		metrics:  metrics,
	}
}

// CacheKey builds the deterministic cache key for a request. Domain list
// order is preserved deliberately: reordering domains is a different key.
func CacheKey(req *domain.SearchRequest) string {
	return fmt.Sprintf("%s%s:%d:%s:%s:%s",
		cache.SearchKeyPrefix,
		req.Query,
		req.MaxResults,
		req.SearchDepth,
		strings.Join(req.IncludeDomains, ","),
		strings.Join(req.ExcludeDomains, ","),
	)
}

// Search executes the pipeline for one request: cache lookup, provider call
// on miss, score-and-filter under advanced depth, cache write, return.
func (s *Service) Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResults, error) {
	started := time.Now()

	if err := req.Validate(s.config.Exa.MaxResults, s.config.Exa.DefaultDepth); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	key := CacheKey(req)

	if cached := s.cachedResults(ctx, key); cached != nil {
		s.metrics.RecordCacheLookup(true)
		s.metrics.RecordSearch(req.SearchDepth, time.Since(started).Seconds())
		return cached, nil
	}
	s.metrics.RecordCacheLookup(false)

	results := s.provider.Search(ctx, req)

	if req.SearchDepth == domain.DepthAdvanced {
		results.Results = relevance.FilterAndRank(results.Results, req.Query, req.MaxResults)
	} else if len(results.Results) > req.MaxResults {
		results.Results = results.Results[:req.MaxResults]
	}
	results.NumberOfResults = len(results.Results)

	s.storeResults(ctx, key, results)

	s.logger.Info("Search completed",
		logger.String("query", req.Query),
		logger.String("depth", req.SearchDepth),
		logger.Int("results", results.NumberOfResults),
		logger.Duration("took", time.Since(started)),
	)
	s.metrics.RecordSearch(req.SearchDepth, time.Since(started).Seconds())

	return results, nil
}

// cachedResults returns the cached result set for key, or nil on miss.
// Backend errors and malformed cached payloads both count as misses.
func (s *Service) cachedResults(ctx context.Context, key string) *domain.SearchResults {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if err != cache.ErrCacheMiss {
			s.logger.Warn("Cache lookup failed", logger.String("key", key), logger.Error(err))
		}
		return nil
	}

	var results domain.SearchResults
	if unmarshalErr := json.Unmarshal([]byte(raw), &results); unmarshalErr != nil {
		s.logger.Warn("Discarding malformed cache entry",
			logger.String("key", key),
			logger.Error(unmarshalErr),
		)
		return nil
	}

	s.logger.Debug("Cache hit", logger.String("key", key))
	return &results
}

// storeResults writes results to the cache. Failures are logged and ignored:
// caching is best-effort and never fails a request.
func (s *Service) storeResults(ctx context.Context, key string, results *domain.SearchResults) {
	payload, err := json.Marshal(results)
	if err != nil {
		s.logger.Warn("Failed to serialize results for cache", logger.Error(err))
		return
	}

	if setErr := s.store.Set(ctx, key, string(payload), s.config.Cache.TTL); setErr != nil {
		s.logger.Warn("Cache write failed", logger.String("key", key), logger.Error(setErr))
		return
	}

	s.logger.Debug("Cached results", logger.String("key", key))
}
