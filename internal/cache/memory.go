package cache

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const cleanupInterval = 5 * time.Minute

// memoryCache is an in process cache used when no redis url is configured.
// Values are stored json encoded so Get semantics match the redis cache.
type memoryCache struct {
	mem *gocache.Cache
}

// NewMemoryCache returns an in memory cache
func NewMemoryCache() Cache {
	return &memoryCache{mem: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

// Set sets a new entry in the cache
func (c *memoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl == ForEver {
		ttl = gocache.NoExpiration
	}
	c.mem.Set(key, raw, ttl)
	return nil
}

// Get returns an entry from the cache and a boolean telling if the key has been found
func (c *memoryCache) Get(_ context.Context, key string, value any) bool {
	raw, ok := c.mem.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(raw.([]byte), value) == nil
}

// Exists returns true if the key exists in the cache
func (c *memoryCache) Exists(_ context.Context, key string) bool {
	_, ok := c.mem.Get(key)
	return ok
}

// Delete removes an entry from the cache
func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mem.Delete(key)
	return nil
}
