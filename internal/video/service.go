package video

import (
	"context"
	"fmt"
	"time"

	"github.com/jonesrussell/assistant/internal/config"
	"github.com/jonesrussell/assistant/internal/domain"
	"github.com/jonesrussell/assistant/internal/exa"
	"github.com/jonesrussell/assistant/internal/logger"
)

// Searcher is the raw provider boundary for video searches. Errors propagate
// here: if the initial search fails there is nothing to process.
type Searcher interface {
	SearchContents(ctx context.Context, query string, opts exa.SearchOptions) ([]exa.Result, error)
}

// ResultEnricher fills enrichment fields on a video result in place.
type ResultEnricher interface {
	Enrich(ctx context.Context, result *domain.VideoResult)
}

// Service runs the video search and enrichment pipeline.
type Service struct {
	searcher Searcher
	enricher ResultEnricher
	config   *config.VideoConfig
	logger   logger.Logger
}

// NewService creates a video search service.
func NewService(searcher Searcher, enricher ResultEnricher, cfg *config.VideoConfig, log logger.Logger) *Service {
	return &Service{
		searcher: searcher,
		enricher: enricher,
		config:   cfg,
		logger:   log,
	}
}

// SearchVideos searches the hosting allowlist, extracts and deduplicates
// video identifiers, and enriches results in bounded batches. Only a failed
// initial provider search is a hard error; everything downstream degrades to
// partial results.
func (s *Service) SearchVideos(ctx context.Context, req *domain.VideoSearchRequest) ([]domain.VideoResult, error) {
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = s.config.DefaultMaxResults
	}

	providerResults, err := s.searcher.SearchContents(ctx, req.Query, exa.SearchOptions{
		NumResults:     maxResults,
		IncludeDomains: SearchDomains(req.IncludeDomains),
		ExcludeDomains: req.ExcludeDomains,
	})
	if err != nil {
		return nil, fmt.Errorf("video search: %w", err)
	}

	unique := s.collectUnique(providerResults)

	s.logger.Info("Video search found results",
		logger.String("query", req.Query),
		logger.Int("provider_results", len(providerResults)),
		logger.Int("unique_videos", len(unique)),
	)

	s.enrichInBatches(ctx, unique)

	results := make([]domain.VideoResult, 0, len(unique))
	for _, v := range unique {
		results = append(results, *v)
	}
	return results, nil
}

// collectUnique maps provider results to video results, dropping anything
// without an extractable identifier and keeping the first occurrence per id.
func (s *Service) collectUnique(providerResults []exa.Result) []*domain.VideoResult {
	seen := make(map[string]struct{}, len(providerResults))
	unique := make([]*domain.VideoResult, 0, len(providerResults))

	for i := range providerResults {
		r := &providerResults[i]

		videoID, ok := ExtractVideoID(r.URL)
		if !ok {
			s.logger.Warn("No video id found for url", logger.String("url", r.URL))
			continue
		}
		if _, dup := seen[videoID]; dup {
			continue
		}
		seen[videoID] = struct{}{}

		unique = append(unique, &domain.VideoResult{
			VideoID:       videoID,
			URL:           r.URL,
			PublishedDate: r.PublishedDate,
			Title:         r.Title,
			Text:          r.Text,
			Image:         r.Image,
			Author:        r.Author,
		})
	}

	return unique
}

// enrichInBatches processes videos in fixed-size batches. Batches run
// strictly in sequence; within a batch every item is enriched concurrently,
// and each item fans out its three enrichment calls. A short delay between
// batches throttles load on the enrichment service.
func (s *Service) enrichInBatches(ctx context.Context, videos []*domain.VideoResult) {
	batchSize := s.config.BatchSize

	for start := 0; start < len(videos); start += batchSize {
		end := start + batchSize
		if end > len(videos) {
			end = len(videos)
		}

		s.enrichBatch(ctx, videos[start:end])

		if end < len(videos) {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.config.BatchDelay):
			}
		}
	}
}

// enrichBatch enriches one batch and waits for every item to settle. Each
// item's goroutine recovers its own panics, so one bad video is logged and
// skipped instead of taking down the process.
func (s *Service) enrichBatch(ctx context.Context, batch []*domain.VideoResult) {
	done := make(chan struct{}, len(batch))
	for _, v := range batch {
		go func(video *domain.VideoResult) {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("Video enrichment panicked",
						logger.Any("error", r),
						logger.String("video_id", video.VideoID),
					)
				}
				done <- struct{}{}
			}()
			s.enricher.Enrich(ctx, video)
		}(v)
	}
	for range batch {
		<-done
	}
}
