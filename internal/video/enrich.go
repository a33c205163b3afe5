package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jonesrussell/assistant/internal/domain"
	"github.com/jonesrussell/assistant/internal/httpclient"
	"github.com/jonesrussell/assistant/internal/logger"
	"github.com/jonesrussell/assistant/internal/telemetry"
)

// Enrichment call kinds, used for logging and metrics labels.
const (
	kindDetails    = "details"
	kindCaptions   = "captions"
	kindTimestamps = "timestamps"
)

// Enricher calls the external video metadata service. Every call is
// independent: a failure leaves the corresponding field absent and never
// aborts the item.
type Enricher struct {
	endpoint    string
	callTimeout time.Duration
	client      *http.Client
	logger      logger.Logger
	metrics     *telemetry.Metrics
}

// NewEnricher creates an enrichment client.
func NewEnricher(endpoint string, callTimeout time.Duration, log logger.Logger, metrics *telemetry.Metrics) *Enricher {
	return &Enricher{
		endpoint:    strings.TrimRight(endpoint, "/"),
		callTimeout: callTimeout,
		client:      httpclient.NewDefault(),
		logger:      log,
		metrics:     metrics,
	}
}

// Enrich issues the three enrichment calls for one video concurrently and
// folds each outcome into the result independently. It returns when all
// three calls have settled.
func (e *Enricher) Enrich(ctx context.Context, result *domain.VideoResult) {
	if e.endpoint == "" {
		return
	}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		details, err := e.videoData(ctx, result.URL)
		if err != nil {
			e.recordFailure(kindDetails, result.VideoID, err)
			return
		}
		result.Details = details
	}()

	go func() {
		defer wg.Done()
		captions, err := e.captions(ctx, result.URL)
		if err != nil {
			e.recordFailure(kindCaptions, result.VideoID, err)
			return
		}
		result.Captions = captions
	}()

	go func() {
		defer wg.Done()
		timestamps, err := e.timestamps(ctx, result.URL)
		if err != nil {
			e.recordFailure(kindTimestamps, result.VideoID, err)
			return
		}
		result.Timestamps = timestamps
	}()

	wg.Wait()
	e.metrics.RecordVideoEnriched()
}

func (e *Enricher) recordFailure(kind, videoID string, err error) {
	e.logger.Warn("Enrichment call failed",
		logger.String("kind", kind),
		logger.String("video_id", videoID),
		logger.Error(err),
	)
	e.metrics.RecordEnrichmentFailure(kind)
}

// post sends {"url": ...} to an enrichment path and decodes the JSON reply
// into out. Each call carries its own timeout.
func (e *Enricher) post(ctx context.Context, path, url string, out any) error {
	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	body, err := json.Marshal(map[string]string{"url": url})
	if err != nil {
		return fmt.Errorf("encode enrichment request: %w", err)
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, e.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build enrichment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("enrichment call %s: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if httpErr := httpclient.ParseHTTPError(resp); httpErr != nil {
		return httpErr
	}

	if decodeErr := json.NewDecoder(resp.Body).Decode(out); decodeErr != nil {
		return fmt.Errorf("decode enrichment response %s: %w", path, decodeErr)
	}
	return nil
}

func (e *Enricher) videoData(ctx context.Context, url string) (map[string]any, error) {
	var details map[string]any
	if err := e.post(ctx, "/video-data", url, &details); err != nil {
		return nil, err
	}
	return details, nil
}

func (e *Enricher) captions(ctx context.Context, url string) (string, error) {
	var reply struct {
		Captions string `json:"captions"`
	}
	if err := e.post(ctx, "/video-captions", url, &reply); err != nil {
		return "", err
	}
	if reply.Captions == "" {
		return "", errors.New("no captions in response")
	}
	return reply.Captions, nil
}

// timestamps accepts both reply shapes the service produces: a bare JSON
// array or an object with a timestamps key.
func (e *Enricher) timestamps(ctx context.Context, url string) ([]string, error) {
	var raw json.RawMessage
	if err := e.post(ctx, "/video-timestamps", url, &raw); err != nil {
		return nil, err
	}

	var list []string
	if json.Unmarshal(raw, &list) == nil && list != nil {
		return list, nil
	}

	var wrapped struct {
		Timestamps []string `json:"timestamps"`
	}
	if json.Unmarshal(raw, &wrapped) == nil && wrapped.Timestamps != nil {
		return wrapped.Timestamps, nil
	}

	return nil, errors.New("unrecognized timestamps response shape")
}
