package ports

import (
	"context"
	"time"
)

// Shared byte store with per-entry TTL used by the cache-aside layer.
// Get must return exactly the bytes previously passed to Set.
type KeyValueStore interface {
	// Get returns (value, true, nil) on hit and (nil, false, nil) on miss.
	// Transport failures return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}
