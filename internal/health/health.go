package health

import (
	"context"

	goRedis "github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/veridlabs/id-node/internal/core/ports"
	iRedis "github.com/veridlabs/id-node/internal/redis"
)

const (
	redis  = "redis"
	db     = "db"
	ledger = "ledger"
)

// Status struct
type Status struct {
	pingers map[string]Ping
}

// Ping interface
type Ping interface {
	Ping(ctx context.Context) error
}

// RedisPinger adapts a redis client to the Ping interface
type RedisPinger struct {
	Client *goRedis.Client
}

// Ping checks the redis connection
func (p RedisPinger) Ping(ctx context.Context) error {
	return iRedis.Status(ctx, p.Client)
}

// LedgerPinger reports the ledger as healthy when the block height is readable
type LedgerPinger struct {
	Ledger ports.Ledger
}

// Ping checks ledger connectivity
func (p LedgerPinger) Ping(ctx context.Context) error {
	_, err := p.Ledger.LatestBlock(ctx)
	return err
}

// New returns a Health instance
func New(pingers ...Ping) *Status {
	m := make(map[string]Ping)

	for _, p := range pingers {
		switch t := p.(type) {
		case *pgxpool.Pool:
			m[db] = t
		case RedisPinger:
			m[redis] = t
		case LedgerPinger:
			m[ledger] = t
		}
	}

	return &Status{m}
}

// Status returns whether each monitored dependency is reachable
func (h *Status) Status(ctx context.Context) map[string]bool {
	m := make(map[string]bool)

	for key, val := range h.pingers {
		m[key] = true
		if err := val.Ping(ctx); err != nil {
			m[key] = false
		}
	}

	return m
}
