package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// connectionTimeout is the timeout for verifying the redis connection.
const connectionTimeout = 5 * time.Second

// ErrEmptyRedisURL is returned when the redis URL is not configured.
var ErrEmptyRedisURL = errors.New("redis url is required")

// redisStore implements Store against a redis server over the wire protocol.
type redisStore struct {
	client *redis.Client
}

// NewRedisStore connects to redis at the given URL and verifies the
// connection before returning.
func NewRedisStore(url string) (Store, error) {
	if url == "" {
		return nil, ErrEmptyRedisURL
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", pingErr)
	}

	return &redisStore{client: client}, nil
}

// Client exposes the underlying redis client so components that need
// redis-native operations (the guest limiter's atomic increment) share the
// process-lifetime connection. It sees through the lazy wrapper, forcing
// initialization if the backend has not connected yet.
func Client(s Store) (*redis.Client, bool) {
	if lz, ok := s.(*lazyStore); ok {
		inner, err := lz.init()
		if err != nil {
			return nil, false
		}
		s = inner
	}

	rs, ok := s.(*redisStore)
	if !ok {
		return nil, false
	}
	return rs.client, true
}

func (s *redisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return val, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *redisStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys, err := s.client.Keys(ctx, pattern).Result()
	if err != nil {
		return nil, fmt.Errorf("redis keys: %w", err)
	}
	return keys, nil
}

func (s *redisStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis ttl: %w", err)
	}
	return ttl, nil
}

func (s *redisStore) Del(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *redisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
