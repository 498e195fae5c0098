// Package cache owns the raw property snapshot: its TTL, the optional
// distributed mirror, and the background refresh loop.
package cache

import (
	"context"
	"time"
)

// Mirror is an optional second-level cache shared between processes. Both
// calls are best-effort: the snapshot store absorbs and logs every mirror
// failure, it never reaches a caller.
type Mirror interface {
	// Get returns the payload for key and whether it was present
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores the payload under key with the given TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key builds the namespaced mirror key for the property snapshot
func Key(namespace string) string {
	return namespace + ":properties"
}
