package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryMirror is an in-process Mirror. It is the memory-only configuration's
// mirror and doubles as a stand-in for redis in tests.
type MemoryMirror struct {
	cache *gocache.Cache
}

// NewMemoryMirror creates a memory mirror with the given default TTL
func NewMemoryMirror(defaultTTL, cleanupInterval time.Duration) *MemoryMirror {
	return &MemoryMirror{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a payload from the mirror
func (m *MemoryMirror) Get(_ context.Context, key string) ([]byte, bool, error) {
	if val, found := m.cache.Get(key); found {
		return val.([]byte), true, nil
	}
	return nil, false, nil
}

// Set stores a payload with the given TTL
func (m *MemoryMirror) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.cache.Set(key, value, ttl)
	return nil
}
