package guest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/assistant/internal/guest"
)

func TestNewRESTCounter_RequiresConfig(t *testing.T) {
	_, err := guest.NewRESTCounter("", "token")
	assert.ErrorIs(t, err, guest.ErrRESTNotConfigured)

	_, err = guest.NewRESTCounter("https://example", "")
	assert.ErrorIs(t, err, guest.ErrRESTNotConfigured)
}

func TestRESTCounter_IncrementUsesMultiExec(t *testing.T) {
	var gotPath string
	var gotCommands [][]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotCommands))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"result":3},{"result":1}]`))
	}))
	defer server.Close()

	counter, err := guest.NewRESTCounter(server.URL, "tkn")
	require.NoError(t, err)

	count, err := counter.Increment(context.Background(), "guest_rate_limit:1.2.3.4", 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	assert.Equal(t, "/multi-exec", gotPath)
	require.Len(t, gotCommands, 2)
	assert.Equal(t, "INCR", gotCommands[0][0])
	assert.Equal(t, "EXPIRE", gotCommands[1][0])
	assert.Equal(t, float64(86400), gotCommands[1][2])
}

func TestRESTCounter_Count(t *testing.T) {
	responses := map[string]string{
		"guest_rate_limit:known": `{"result":"7"}`,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var cmd []any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cmd))
		require.Equal(t, "GET", cmd[0])

		w.Header().Set("Content-Type", "application/json")
		if body, ok := responses[cmd[1].(string)]; ok {
			_, _ = w.Write([]byte(body))
			return
		}
		_, _ = w.Write([]byte(`{"result":null}`))
	}))
	defer server.Close()

	counter, err := guest.NewRESTCounter(server.URL, "tkn")
	require.NoError(t, err)

	count, err := counter.Count(context.Background(), "guest_rate_limit:known")
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)

	count, err = counter.Count(context.Background(), "guest_rate_limit:absent")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count, "absent counters read as zero")
}

func TestRESTCounter_SurfacesBackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	counter, err := guest.NewRESTCounter(server.URL, "bad")
	require.NoError(t, err)

	_, err = counter.Count(context.Background(), "k")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, guest.ErrRESTNotConfigured))
}
