// Package exa wraps the Exa search API and normalizes its heterogeneous
// result shapes into the canonical domain types.
package exa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonesrussell/assistant/internal/config"
	"github.com/jonesrussell/assistant/internal/domain"
	"github.com/jonesrussell/assistant/internal/httpclient"
	"github.com/jonesrussell/assistant/internal/logger"
	"github.com/jonesrussell/assistant/internal/retry"
	"github.com/jonesrussell/assistant/internal/telemetry"
)

// ErrMissingAPIKey is returned when no Exa API key is configured.
var ErrMissingAPIKey = errors.New("exa api key is not set")

// maxTextLength bounds full-text content carried into a result item.
const maxTextLength = 2000

// highlightSeparator joins provider highlight snippets into one content string.
const highlightSeparator = " ... "

// Content richness per depth.
const (
	advancedHighlightsPerURL = 3
	advancedNumSentences     = 3
	basicHighlightsPerURL    = 2
	basicNumSentences        = 2
)

// Client calls the Exa search API.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  logger.Logger
	metrics *telemetry.Metrics
}

// NewClient creates an Exa client from configuration.
func NewClient(cfg config.ExaConfig, log logger.Logger, metrics *telemetry.Metrics) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  httpclient.New(&httpclient.Config{Timeout: cfg.Timeout}),
		logger:  log,
		metrics: metrics,
	}
}

// Result is a single provider-native search result.
type Result struct {
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	PublishedDate string   `json:"publishedDate"`
	Author        string   `json:"author"`
	Text          string   `json:"text"`
	Summary       string   `json:"summary"`
	Image         string   `json:"image"`
	Highlights    []string `json:"highlights"`
}

// SearchOptions controls a raw provider call.
type SearchOptions struct {
	NumResults     int
	IncludeDomains []string
	ExcludeDomains []string
	Contents       *ContentsOptions
}

// ContentsOptions selects how much content the provider returns per result.
type ContentsOptions struct {
	Text       bool              `json:"text,omitempty"`
	Highlights *HighlightOptions `json:"highlights,omitempty"`
	Summary    *SummaryOptions   `json:"summary,omitempty"`
}

// HighlightOptions tunes provider highlight extraction.
type HighlightOptions struct {
	NumSentences     int `json:"numSentences"`
	HighlightsPerURL int `json:"highlightsPerUrl"`
}

// SummaryOptions carries the summarization directive for advanced searches.
type SummaryOptions struct {
	Query string `json:"query"`
}

// searchRequest is the provider wire format.
type searchRequest struct {
	Query          string           `json:"query"`
	NumResults     int              `json:"numResults"`
	IncludeDomains []string         `json:"includeDomains,omitempty"`
	ExcludeDomains []string         `json:"excludeDomains,omitempty"`
	Type           string           `json:"type"`
	UseAutoprompt  bool             `json:"useAutoprompt"`
	Contents       *ContentsOptions `json:"contents,omitempty"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

// SearchContents performs a raw provider search. Unlike Search, errors
// propagate so callers that need hard failures (the video pipeline's initial
// search) can see them.
func (c *Client) SearchContents(ctx context.Context, query string, opts SearchOptions) ([]Result, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	reqBody := searchRequest{
		Query:          query,
		NumResults:     opts.NumResults,
		IncludeDomains: opts.IncludeDomains,
		ExcludeDomains: opts.ExcludeDomains,
		Type:           "auto",
		UseAutoprompt:  true,
		Contents:       opts.Contents,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	var parsed searchResponse
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = 2

	err = retry.Do(ctx, retryCfg, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
		if reqErr != nil {
			return fmt.Errorf("build search request: %w", reqErr)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)

		resp, doErr := c.client.Do(req)
		if doErr != nil {
			return fmt.Errorf("exa search call: %w", doErr)
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		if httpErr := httpclient.ParseHTTPError(resp); httpErr != nil {
			return httpErr
		}

		if decodeErr := json.NewDecoder(resp.Body).Decode(&parsed); decodeErr != nil {
			return fmt.Errorf("decode search response: %w", decodeErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return parsed.Results, nil
}

// Search performs a depth-driven search and normalizes the response. It never
// fails its caller: any adapter-level failure is logged and degrades to an
// empty result set with the query echoed back.
func (c *Client) Search(ctx context.Context, req *domain.SearchRequest) *domain.SearchResults {
	opts := SearchOptions{
		NumResults:     req.MaxResults,
		IncludeDomains: req.IncludeDomains,
		ExcludeDomains: req.ExcludeDomains,
		Contents:       contentsForDepth(req.SearchDepth, req.Query),
	}

	c.logger.Info("Executing provider search",
		logger.String("query", req.Query),
		logger.String("depth", req.SearchDepth),
		logger.Int("num_results", req.MaxResults),
	)

	providerResults, err := c.SearchContents(ctx, req.Query, opts)
	if err != nil {
		c.logger.Error("Provider search failed",
			logger.String("query", req.Query),
			logger.Error(err),
		)
		c.metrics.RecordProviderFailure()
		return domain.EmptyResults(req.Query)
	}

	items := make([]domain.SearchResultItem, 0, len(providerResults))
	for i := range providerResults {
		items = append(items, normalizeResult(&providerResults[i]))
	}

	return &domain.SearchResults{
		Results:         items,
		Query:           req.Query,
		Images:          []string{},
		NumberOfResults: len(items),
	}
}

// contentsForDepth maps a search depth to provider content options. Advanced
// requests full text, richer highlights, and a summarization directive; basic
// requests lighter highlights only.
func contentsForDepth(depth, query string) *ContentsOptions {
	if depth == domain.DepthAdvanced {
		return &ContentsOptions{
			Text: true,
			Highlights: &HighlightOptions{
				NumSentences:     advancedNumSentences,
				HighlightsPerURL: advancedHighlightsPerURL,
			},
			Summary: &SummaryOptions{
				Query: "Summarize the key information about: " + query,
			},
		}
	}

	return &ContentsOptions{
		Highlights: &HighlightOptions{
			NumSentences:     basicNumSentences,
			HighlightsPerURL: basicHighlightsPerURL,
		},
	}
}

// normalizeResult maps a provider result to the canonical item shape.
// Content preference: highlights, then bounded full text, then summary, then
// the placeholder. Content is never empty.
func normalizeResult(r *Result) domain.SearchResultItem {
	var content string
	switch {
	case len(r.Highlights) > 0:
		content = strings.Join(r.Highlights, highlightSeparator)
	case r.Text != "":
		content = truncateRunes(r.Text, maxTextLength)
	case r.Summary != "":
		content = r.Summary
	}

	if content == "" {
		content = domain.PlaceholderContent
	}

	return domain.SearchResultItem{
		Title:   r.Title,
		URL:     r.URL,
		Content: content,
	}
}

// truncateRunes bounds a string without splitting a multi-byte rune.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
