// Package chat relays gated chat requests to the upstream model gateway and
// streams the reply back. The service owns admission (share-page check, guest
// limits, provider availability); generation itself lives upstream.
package chat

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jonesrussell/assistant/internal/httpclient"
	"github.com/jonesrussell/assistant/internal/logger"
)

// ErrNoUpstream is returned when no upstream gateway is configured.
var ErrNoUpstream = errors.New("chat upstream is not configured")

// streamBufSize is the copy buffer for relaying the upstream stream. Small
// enough to keep token chunks flowing promptly.
const streamBufSize = 4096

// Relay forwards chat requests to the upstream gateway.
type Relay struct {
	upstream string
	client   *http.Client
	logger   logger.Logger
}

// NewRelay creates a chat relay. The client deliberately carries no overall
// timeout: streamed generations are long-lived and are bounded by the request
// context instead.
func NewRelay(upstream string, log logger.Logger) *Relay {
	return &Relay{
		upstream: upstream,
		client:   httpclient.NewStreaming(),
		logger:   log,
	}
}

// Stream forwards body to the upstream and copies the streamed reply to w,
// flushing after every chunk so tokens reach the client as they arrive.
func (r *Relay) Stream(req *http.Request, w http.ResponseWriter, body []byte) error {
	if r.upstream == "" {
		return ErrNoUpstream
	}

	upstreamReq, err := http.NewRequestWithContext(req.Context(), http.MethodPost, r.upstream, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build upstream request: %w", err)
	}
	upstreamReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(upstreamReq)
	if err != nil {
		return fmt.Errorf("upstream call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if httpErr := httpclient.ParseHTTPError(resp); httpErr != nil {
		return httpErr
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, streamBufSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := w.Write(buf[:n]); writeErr != nil {
				return fmt.Errorf("write stream chunk: %w", writeErr)
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("read upstream stream: %w", readErr)
		}
	}
}
