package cache

import (
	"testing"

	"github.com/redis/go-redis/v9"
)

func TestClient_SeesThroughLazyWrapper(t *testing.T) {
	inner := &redisStore{client: redis.NewClient(&redis.Options{Addr: "localhost:6379"})}
	lazy := NewLazy(func() (Store, error) { return inner, nil })

	client, ok := Client(lazy)
	if !ok {
		t.Fatal("Client() should unwrap a lazily-initialized redis store")
	}
	if client != inner.client {
		t.Error("Client() should return the store's own connection, not a new one")
	}
}

func TestClient_NonRedisBackend(t *testing.T) {
	lazy := NewLazy(func() (Store, error) { return &restStore{}, nil })

	if _, ok := Client(lazy); ok {
		t.Error("Client() = ok for a REST backend, want false")
	}
}

func TestClient_FailedInitialization(t *testing.T) {
	lazy := NewLazy(func() (Store, error) { return nil, ErrEmptyRedisURL })

	if _, ok := Client(lazy); ok {
		t.Error("Client() = ok after a failed initialization, want false")
	}
}
