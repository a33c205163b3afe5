package domain

// VideoResult is a single video search result after identifier extraction and
// enrichment. Enrichment fields stay nil when the corresponding call failed.
type VideoResult struct {
	VideoID       string         `json:"videoId"`
	URL           string         `json:"url"`
	PublishedDate string         `json:"publishedDate,omitempty"`
	Title         string         `json:"title,omitempty"`
	Text          string         `json:"text,omitempty"`
	Image         string         `json:"image,omitempty"`
	Author        string         `json:"author,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
	Captions      string         `json:"captions,omitempty"`
	Timestamps    []string       `json:"timestamps,omitempty"`
}

// VideoSearchRequest represents a video search request.
type VideoSearchRequest struct {
	Query          string   `json:"query"`
	MaxResults     int      `json:"maxResults"`
	IncludeDomains []string `json:"includeDomains"`
	ExcludeDomains []string `json:"excludeDomains"`
}

// VideoSearchResults wraps the enriched video results.
type VideoSearchResults struct {
	Results []VideoResult `json:"results"`
}
