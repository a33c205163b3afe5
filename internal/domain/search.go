// Package domain defines the request and result shapes shared across the
// assistant service.
package domain

import "fmt"

// Search depth settings. Depth controls how much content is requested per
// result and whether relevance scoring is applied.
const (
	DepthBasic    = "basic"
	DepthAdvanced = "advanced"
)

// PlaceholderContent is used when a provider result carries no usable content.
const PlaceholderContent = "No content available"

// SearchRequest represents an advanced-search request.
type SearchRequest struct {
	Query          string   `json:"query"`
	MaxResults     int      `json:"maxResults"`
	SearchDepth    string   `json:"searchDepth"`
	IncludeDomains []string `json:"includeDomains"`
	ExcludeDomains []string `json:"excludeDomains"`
}

// Validate checks the request and fills in defaults. MaxResults is clamped to
// the provider ceiling; an unknown depth falls back to defaultDepth.
func (r *SearchRequest) Validate(resultCeiling int, defaultDepth string) error {
	if r.Query == "" {
		return fmt.Errorf("query is required")
	}

	if r.MaxResults <= 0 {
		r.MaxResults = 10
	}
	if r.MaxResults > resultCeiling {
		r.MaxResults = resultCeiling
	}

	if r.SearchDepth != DepthBasic && r.SearchDepth != DepthAdvanced {
		r.SearchDepth = defaultDepth
	}

	return nil
}

// SearchResultItem is a single normalized search result. Content is never
// empty; normalization falls back to PlaceholderContent.
type SearchResultItem struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// SearchResults is the canonical result set returned to callers and stored in
// the cache. It is serialized verbatim to and from the cache.
type SearchResults struct {
	Results         []SearchResultItem `json:"results"`
	Query           string             `json:"query"`
	Images          []string           `json:"images"`
	NumberOfResults int                `json:"number_of_results"`
}

// EmptyResults returns a SearchResults with no hits for the given query.
// Used when the provider call fails and the operation degrades to empty.
func EmptyResults(query string) *SearchResults {
	return &SearchResults{
		Results:         []SearchResultItem{},
		Query:           query,
		Images:          []string{},
		NumberOfResults: 0,
	}
}

// SearchErrorResponse is the error envelope returned on request-level
// failures outside the adapter's own degrade-to-empty handling.
type SearchErrorResponse struct {
	Message         string             `json:"message"`
	Error           string             `json:"error"`
	Query           string             `json:"query"`
	Results         []SearchResultItem `json:"results"`
	Images          []string           `json:"images"`
	NumberOfResults int                `json:"number_of_results"`
}
