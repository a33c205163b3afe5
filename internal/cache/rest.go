package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jonesrussell/assistant/internal/httpclient"
)

// ErrRESTNotConfigured is returned when the REST backend URL or token is missing.
var ErrRESTNotConfigured = errors.New("cache rest url and token are required")

// restStore implements Store against an Upstash-style REST API. Commands are
// posted as JSON arrays to the base URL and answered as {"result": ...}.
type restStore struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewRESTStore creates a Store backed by a redis REST endpoint.
func NewRESTStore(baseURL, token string) (Store, error) {
	if baseURL == "" || token == "" {
		return nil, ErrRESTNotConfigured
	}

	return &restStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  httpclient.New(&httpclient.Config{Timeout: 10 * time.Second}),
	}, nil
}

// command executes a redis command over REST and returns the raw result.
func (s *restStore) command(ctx context.Context, cmd []any) (json.RawMessage, error) {
	body, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("marshal command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cache rest call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if httpErr := httpclient.ParseHTTPError(resp); httpErr != nil {
		return nil, httpErr
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr != nil {
		return nil, fmt.Errorf("decode cache rest response: %w", decodeErr)
	}

	return envelope.Result, nil
}

func (s *restStore) Get(ctx context.Context, key string) (string, error) {
	result, err := s.command(ctx, []any{"GET", key})
	if err != nil {
		return "", err
	}
	if len(result) == 0 || string(result) == "null" {
		return "", ErrCacheMiss
	}

	var val string
	if unmarshalErr := json.Unmarshal(result, &val); unmarshalErr != nil {
		return "", fmt.Errorf("decode cached value: %w", unmarshalErr)
	}
	return val, nil
}

func (s *restStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := s.command(ctx, []any{"SET", key, value, "EX", int(ttl.Seconds())})
	return err
}

func (s *restStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	result, err := s.command(ctx, []any{"KEYS", pattern})
	if err != nil {
		return nil, err
	}

	var keys []string
	if unmarshalErr := json.Unmarshal(result, &keys); unmarshalErr != nil {
		return nil, fmt.Errorf("decode keys response: %w", unmarshalErr)
	}
	return keys, nil
}

func (s *restStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	result, err := s.command(ctx, []any{"TTL", key})
	if err != nil {
		return 0, err
	}

	var seconds int64
	if unmarshalErr := json.Unmarshal(result, &seconds); unmarshalErr != nil {
		return 0, fmt.Errorf("decode ttl response: %w", unmarshalErr)
	}
	return time.Duration(seconds) * time.Second, nil
}

func (s *restStore) Del(ctx context.Context, key string) error {
	_, err := s.command(ctx, []any{"DEL", key})
	return err
}

func (s *restStore) Ping(ctx context.Context) error {
	_, err := s.command(ctx, []any{"PING"})
	return err
}
