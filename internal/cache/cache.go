package cache

import (
	"context"
	"time"
)

// ForEver TTL to cache entries that never expire
const ForEver = 0 * time.Second

// Cache interface propose a cache interface with the common operations.
type Cache interface {
	// Set sets an entry in the cache. ttl of ForEver means no expiration.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Get returns an entry from the cache. value must be passed as reference,
	// the cached value will be stored there. The boolean tells whether the key
	// was found.
	Get(ctx context.Context, key string, value any) bool
	// Exists returns true if the key exists in the cache
	Exists(ctx context.Context, key string) bool
	// Delete removes an entry from the cache
	Delete(ctx context.Context, key string) error
}
