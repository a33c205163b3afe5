package guest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jonesrussell/assistant/internal/httpclient"
)

// ErrRESTNotConfigured is returned when the REST backend URL or token is missing.
var ErrRESTNotConfigured = errors.New("guest counter rest url and token are required")

// restCounter implements Counter against an Upstash-style REST API. Single
// commands are posted to the base URL; the increment goes through the
// transactional multi-exec endpoint so INCR and EXPIRE land atomically.
type restCounter struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewRESTCounter creates a Counter backed by a redis REST endpoint.
func NewRESTCounter(baseURL, token string) (Counter, error) {
	if baseURL == "" || token == "" {
		return nil, ErrRESTNotConfigured
	}

	return &restCounter{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  httpclient.New(&httpclient.Config{Timeout: 10 * time.Second}),
	}, nil
}

func (c *restCounter) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("guest counter rest call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if httpErr := httpclient.ParseHTTPError(resp); httpErr != nil {
		return httpErr
	}

	if decodeErr := json.NewDecoder(resp.Body).Decode(out); decodeErr != nil {
		return fmt.Errorf("decode guest counter response: %w", decodeErr)
	}
	return nil
}

func (c *restCounter) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	commands := [][]any{
		{"INCR", key},
		{"EXPIRE", key, int(window.Seconds())},
	}

	var replies []struct {
		Result json.RawMessage `json:"result"`
	}
	if err := c.post(ctx, "/multi-exec", commands, &replies); err != nil {
		return 0, err
	}
	if len(replies) == 0 {
		return 0, errors.New("empty multi-exec reply")
	}

	return parseCount(replies[0].Result)
}

func (c *restCounter) Count(ctx context.Context, key string) (int64, error) {
	var reply struct {
		Result json.RawMessage `json:"result"`
	}
	if err := c.post(ctx, "", []any{"GET", key}, &reply); err != nil {
		return 0, err
	}
	if len(reply.Result) == 0 || string(reply.Result) == "null" {
		return 0, nil
	}

	return parseCount(reply.Result)
}

// parseCount accepts both reply encodings the REST API produces for counter
// values: a JSON number and a JSON string holding digits.
func parseCount(raw json.RawMessage) (int64, error) {
	var n int64
	if json.Unmarshal(raw, &n) == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("unexpected counter value %q: %w", string(raw), err)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse counter value %q: %w", s, err)
	}
	return n, nil
}
