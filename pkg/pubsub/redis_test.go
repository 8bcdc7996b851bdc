package pubsub

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridlabs/id-node/internal/redis"
)

func TestRedisHappyPath(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := miniredis.RunT(t)
	client, err := redis.Open(ctx, "redis://"+s.Addr())
	require.NoError(t, err)

	wg := sync.WaitGroup{}

	ps := NewRedis(client)
	ps.Subscribe(ctx, EventCredentialIssued, func(ctx context.Context, payload Message) error {
		defer wg.Done()
		var ev CredentialIssuedEvent
		assert.NoError(t, ev.Unmarshal(payload))
		assert.Equal(t, "cred-1", ev.CredentialID)
		assert.Equal(t, "did:verid:issuer1", ev.IssuerDID)
		assert.Equal(t, "did:verid:subject1", ev.SubjectDID)
		return nil
	})

	wg.Add(1)
	require.NoError(t, ps.Publish(ctx, EventCredentialIssued, &CredentialIssuedEvent{
		CredentialID: "cred-1",
		IssuerDID:    "did:verid:issuer1",
		SubjectDID:   "did:verid:subject1",
	}))

	wg.Wait()
}

func TestRedisRecover(t *testing.T) {
	const nEvents = 100
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := miniredis.RunT(t)
	client, err := redis.Open(ctx, "redis://"+s.Addr())
	require.NoError(t, err)

	wg := sync.WaitGroup{}

	ps := NewRedis(client)
	// This callback panics ...
	ps.Subscribe(ctx, "topic", func(ctx context.Context, payload Message) error {
		defer wg.Done()
		panic("simulating a panic")
	})
	var count atomic.Int64
	// ... but this other one still runs without problems
	ps.Subscribe(ctx, "topic", func(ctx context.Context, payload Message) error {
		defer wg.Done()
		count.Add(1)
		return nil
	})

	for i := 0; i < nEvents; i++ {
		wg.Add(2)
		require.NoError(t, ps.Publish(ctx, "topic", &CredentialRevokedEvent{}))
	}

	wg.Wait()

	assert.Equal(t, nEvents, int(count.Load()))
}
