package cache_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonesrussell/assistant/internal/cache"
)

func TestNewRESTStore_RequiresConfig(t *testing.T) {
	if _, err := cache.NewRESTStore("", "token"); !errors.Is(err, cache.ErrRESTNotConfigured) {
		t.Errorf("NewRESTStore() error = %v, want ErrRESTNotConfigured", err)
	}
	if _, err := cache.NewRESTStore("https://example", ""); !errors.Is(err, cache.ErrRESTNotConfigured) {
		t.Errorf("NewRESTStore() error = %v, want ErrRESTNotConfigured", err)
	}
}

// restFixture answers REST commands from a canned command->result table and
// records the commands it saw.
func restFixture(t *testing.T, token string, respond func(cmd []any) any) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer "+token {
			t.Errorf("Authorization = %q, want Bearer %s", got, token)
		}

		var cmd []any
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			t.Errorf("decode command: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{"result": respond(cmd)}); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
}

func TestRESTStore_GetHitAndMiss(t *testing.T) {
	values := map[string]string{"exists": "cached value"}
	server := restFixture(t, "tkn", func(cmd []any) any {
		if len(cmd) == 2 && cmd[0] == "GET" {
			if val, ok := values[cmd[1].(string)]; ok {
				return val
			}
		}
		return nil
	})
	defer server.Close()

	store, err := cache.NewRESTStore(server.URL, "tkn")
	if err != nil {
		t.Fatalf("NewRESTStore() error: %v", err)
	}

	val, err := store.Get(context.Background(), "exists")
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if val != "cached value" {
		t.Errorf("Get() = %q, want cached value", val)
	}

	if _, err = store.Get(context.Background(), "missing"); !errors.Is(err, cache.ErrCacheMiss) {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
}

func TestRESTStore_SetSendsExpiry(t *testing.T) {
	var got []any
	server := restFixture(t, "tkn", func(cmd []any) any {
		got = cmd
		return "OK"
	})
	defer server.Close()

	store, err := cache.NewRESTStore(server.URL, "tkn")
	if err != nil {
		t.Fatalf("NewRESTStore() error: %v", err)
	}

	if setErr := store.Set(context.Background(), "k", "v", time.Hour); setErr != nil {
		t.Fatalf("Set() unexpected error: %v", setErr)
	}

	// JSON numbers decode as float64.
	want := []any{"SET", "k", "v", "EX", float64(3600)}
	if len(got) != len(want) {
		t.Fatalf("Set() command = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Set() command[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRESTStore_TTLAndPing(t *testing.T) {
	server := restFixture(t, "tkn", func(cmd []any) any {
		switch cmd[0] {
		case "TTL":
			return 120
		case "PING":
			return "PONG"
		}
		return nil
	})
	defer server.Close()

	store, err := cache.NewRESTStore(server.URL, "tkn")
	if err != nil {
		t.Fatalf("NewRESTStore() error: %v", err)
	}

	ttl, err := store.TTL(context.Background(), "k")
	if err != nil {
		t.Fatalf("TTL() unexpected error: %v", err)
	}
	if ttl != 2*time.Minute {
		t.Errorf("TTL() = %v, want 2m", ttl)
	}

	if pingErr := store.Ping(context.Background()); pingErr != nil {
		t.Errorf("Ping() unexpected error: %v", pingErr)
	}
}
