package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

func testCaches(t *testing.T) map[string]Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return map[string]Cache{
		"redis":  NewRedisCache(client),
		"memory": NewMemoryCache(),
	}
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, c := range testCaches(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.Set(ctx, "k1", payload{ID: "a", Count: 2}, time.Minute))

			var got payload
			assert.True(t, c.Get(ctx, "k1", &got))
			assert.Equal(t, payload{ID: "a", Count: 2}, got)
			assert.True(t, c.Exists(ctx, "k1"))

			require.NoError(t, c.Delete(ctx, "k1"))
			assert.False(t, c.Exists(ctx, "k1"))
			assert.False(t, c.Get(ctx, "k1", &got))
		})
	}
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := &NullCache{}
	require.NoError(t, c.Set(ctx, "k", "v", ForEver))
	var got string
	assert.False(t, c.Get(ctx, "k", &got))
	assert.False(t, c.Exists(ctx, "k"))
	require.NoError(t, c.Delete(ctx, "k"))
}
