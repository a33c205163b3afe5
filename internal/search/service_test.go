package search_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonesrussell/assistant/internal/cache"
	"github.com/jonesrussell/assistant/internal/config"
	"github.com/jonesrussell/assistant/internal/domain"
	"github.com/jonesrussell/assistant/internal/logger"
	"github.com/jonesrussell/assistant/internal/search"
)

// memStore is an in-memory cache.Store for pipeline tests.
type memStore struct {
	mu      sync.Mutex
	values  map[string]string
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	lastSet string
}

func newMemStore() *memStore {
	return &memStore{
		values: make(map[string]string),
		ttls:   make(map[string]time.Duration),
	}
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	val, ok := m.values[key]
	if !ok {
		return "", cache.ErrCacheMiss
	}
	return val, nil
}

func (m *memStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	m.ttls[key] = ttl
	m.lastSet = key
	return nil
}

func (m *memStore) Keys(_ context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *memStore) TTL(_ context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[key], nil
}

func (m *memStore) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	delete(m.ttls, key)
	return nil
}

func (m *memStore) Ping(_ context.Context) error { return nil }

// fakeProvider is a canned search.Provider.
type fakeProvider struct {
	results *domain.SearchResults
	calls   int
}

func (f *fakeProvider) Search(_ context.Context, req *domain.SearchRequest) *domain.SearchResults {
	f.calls++
	if f.results != nil {
		return f.results
	}
	return domain.EmptyResults(req.Query)
}

func testConfig() *config.Config {
	return &config.Config{
		Exa: config.ExaConfig{
			MaxResults:   50,
			DefaultDepth: domain.DepthAdvanced,
		},
		Cache: config.CacheConfig{
			TTL: time.Hour,
		},
	}
}

func TestCacheKey_Format(t *testing.T) {
	req := &domain.SearchRequest{
		Query:          "golang tutorials",
		MaxResults:     20,
		SearchDepth:    domain.DepthAdvanced,
		IncludeDomains: []string{"go.dev", "golang.org"},
		ExcludeDomains: []string{"spam.example"},
	}

	want := "exa-search:golang tutorials:20:advanced:go.dev,golang.org:spam.example"
	if got := search.CacheKey(req); got != want {
		t.Errorf("CacheKey() = %q, want %q", got, want)
	}
}

func TestCacheKey_Deterministic(t *testing.T) {
	req := &domain.SearchRequest{Query: "q", MaxResults: 10, SearchDepth: domain.DepthBasic}

	if search.CacheKey(req) != search.CacheKey(req) {
		t.Error("CacheKey() should be deterministic for identical requests")
	}
}

func TestCacheKey_DomainOrderMatters(t *testing.T) {
	a := &domain.SearchRequest{Query: "q", MaxResults: 10, IncludeDomains: []string{"a.com", "b.com"}}
	b := &domain.SearchRequest{Query: "q", MaxResults: 10, IncludeDomains: []string{"b.com", "a.com"}}

	if search.CacheKey(a) == search.CacheKey(b) {
		t.Error("CacheKey() should distinguish domain list order")
	}
}

func TestSearch_EmptyQueryRejected(t *testing.T) {
	svc := search.NewService(&fakeProvider{}, newMemStore(), testConfig(), logger.NewNop(), nil)

	_, err := svc.Search(context.Background(), &domain.SearchRequest{})
	if err == nil {
		t.Fatal("Search() should reject an empty query")
	}
	if !strings.Contains(err.Error(), "validation") {
		t.Errorf("Search() error = %v, want validation error", err)
	}
}

func TestSearch_CacheHitSkipsProvider(t *testing.T) {
	store := newMemStore()
	provider := &fakeProvider{}
	svc := search.NewService(provider, store, testConfig(), logger.NewNop(), nil)

	req := &domain.SearchRequest{Query: "cached query", MaxResults: 10, SearchDepth: domain.DepthBasic}
	cached := &domain.SearchResults{
		Results:         []domain.SearchResultItem{{Title: "Hit", URL: "https://hit", Content: "cached content"}},
		Query:           "cached query",
		Images:          []string{},
		NumberOfResults: 1,
	}
	payload, err := json.Marshal(cached)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	if setErr := store.Set(context.Background(), search.CacheKey(req), string(payload), time.Hour); setErr != nil {
		t.Fatalf("seed cache: %v", setErr)
	}

	got, err := svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search() unexpected error: %v", err)
	}

	if provider.calls != 0 {
		t.Errorf("provider called %d times on cache hit, want 0", provider.calls)
	}
	if len(got.Results) != 1 || got.Results[0].URL != "https://hit" {
		t.Errorf("Search() = %+v, want cached results", got)
	}
}

func TestSearch_MissCallsProviderAndCaches(t *testing.T) {
	store := newMemStore()
	content := "golang concurrency patterns " + strings.Repeat("worth reading about. ", 10)
	provider := &fakeProvider{
		results: &domain.SearchResults{
			Results: []domain.SearchResultItem{
				{Title: "Golang concurrency patterns", URL: "https://keep", Content: content},
			},
			Query:  "golang concurrency",
			Images: []string{},
		},
	}
	svc := search.NewService(provider, store, testConfig(), logger.NewNop(), nil)

	req := &domain.SearchRequest{Query: "golang concurrency", MaxResults: 10, SearchDepth: domain.DepthAdvanced}
	got, err := svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search() unexpected error: %v", err)
	}

	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1", provider.calls)
	}
	if got.NumberOfResults != 1 {
		t.Errorf("Search() number_of_results = %d, want 1", got.NumberOfResults)
	}

	if store.lastSet != search.CacheKey(req) {
		t.Errorf("cache write key = %q, want %q", store.lastSet, search.CacheKey(req))
	}
	if ttl := store.ttls[store.lastSet]; ttl != time.Hour {
		t.Errorf("cache write ttl = %v, want 1h", ttl)
	}
}

func TestSearch_AdvancedFiltersIrrelevant(t *testing.T) {
	relevantContent := "golang concurrency golang concurrency " + strings.Repeat("useful detail here. ", 10)
	provider := &fakeProvider{
		results: &domain.SearchResults{
			Results: []domain.SearchResultItem{
				{Title: "Golang concurrency", URL: "https://keep", Content: relevantContent},
				{Title: "Cooking", URL: "https://drop", Content: "short"},
			},
			Query:  "golang concurrency",
			Images: []string{},
		},
	}
	svc := search.NewService(provider, newMemStore(), testConfig(), logger.NewNop(), nil)

	req := &domain.SearchRequest{Query: "golang concurrency", MaxResults: 10, SearchDepth: domain.DepthAdvanced}
	got, err := svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search() unexpected error: %v", err)
	}

	if len(got.Results) != 1 {
		t.Fatalf("Search() kept %d results, want 1", len(got.Results))
	}
	if got.Results[0].URL != "https://keep" {
		t.Errorf("Search() kept %s, want https://keep", got.Results[0].URL)
	}
}

func TestSearch_BasicTruncatesWithoutFiltering(t *testing.T) {
	provider := &fakeProvider{
		results: &domain.SearchResults{
			Results: []domain.SearchResultItem{
				{URL: "https://1", Content: "unrelated"},
				{URL: "https://2", Content: "unrelated"},
				{URL: "https://3", Content: "unrelated"},
			},
			Query:  "anything",
			Images: []string{},
		},
	}
	svc := search.NewService(provider, newMemStore(), testConfig(), logger.NewNop(), nil)

	req := &domain.SearchRequest{Query: "anything", MaxResults: 2, SearchDepth: domain.DepthBasic}
	got, err := svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search() unexpected error: %v", err)
	}

	if len(got.Results) != 2 {
		t.Errorf("Search() kept %d results, want 2 (truncated, not filtered)", len(got.Results))
	}
	if got.NumberOfResults != 2 {
		t.Errorf("Search() number_of_results = %d, want 2", got.NumberOfResults)
	}
}

func TestSearch_MalformedCacheEntryIsMiss(t *testing.T) {
	store := newMemStore()
	provider := &fakeProvider{}
	svc := search.NewService(provider, store, testConfig(), logger.NewNop(), nil)

	req := &domain.SearchRequest{Query: "broken entry", MaxResults: 10, SearchDepth: domain.DepthBasic}
	if err := store.Set(context.Background(), search.CacheKey(req), "{not json", time.Hour); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	if _, err := svc.Search(context.Background(), req); err != nil {
		t.Fatalf("Search() unexpected error: %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1 (malformed entry treated as miss)", provider.calls)
	}
}
