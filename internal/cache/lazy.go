package cache

import (
	"context"
	"sync"
	"time"
)

// lazyStore defers backend construction to first use and shares the single
// connection for the lifetime of the process. The sync.Once guard means
// concurrent first-use cannot create duplicate connections; a failed
// initialization is sticky and surfaces as an error on every operation,
// which callers treat as a miss.
type lazyStore struct {
	once    sync.Once
	factory func() (Store, error)
	store   Store
	err     error
}

// NewLazy wraps a Store factory in a lazily-initialized Store.
func NewLazy(factory func() (Store, error)) Store {
	return &lazyStore{factory: factory}
}

func (l *lazyStore) init() (Store, error) {
	l.once.Do(func() {
		l.store, l.err = l.factory()
	})
	return l.store, l.err
}

func (l *lazyStore) Get(ctx context.Context, key string) (string, error) {
	store, err := l.init()
	if err != nil {
		return "", err
	}
	return store.Get(ctx, key)
}

func (l *lazyStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	store, err := l.init()
	if err != nil {
		return err
	}
	return store.Set(ctx, key, value, ttl)
}

func (l *lazyStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	store, err := l.init()
	if err != nil {
		return nil, err
	}
	return store.Keys(ctx, pattern)
}

func (l *lazyStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	store, err := l.init()
	if err != nil {
		return 0, err
	}
	return store.TTL(ctx, key)
}

func (l *lazyStore) Del(ctx context.Context, key string) error {
	store, err := l.init()
	if err != nil {
		return err
	}
	return store.Del(ctx, key)
}

func (l *lazyStore) Ping(ctx context.Context) error {
	store, err := l.init()
	if err != nil {
		return err
	}
	return store.Ping(ctx)
}
