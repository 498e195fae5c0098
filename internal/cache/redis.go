package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisMirror is a Mirror backed by a shared redis instance, so multiple
// replicas can serve from one upstream fetch.
type RedisMirror struct {
	client *redis.Client
}

// NewRedisMirror connects to redis and verifies the connection
func NewRedisMirror(redisURL string) (*RedisMirror, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisMirror{client: client}, nil
}

// Get retrieves a payload, reporting absence without an error
func (m *RedisMirror) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := m.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return payload, true, nil
}

// Set stores a payload with the given TTL
func (m *RedisMirror) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := m.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the redis connection
func (m *RedisMirror) Close() error {
	return m.client.Close()
}
