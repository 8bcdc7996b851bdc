package health

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	iledger "github.com/veridlabs/id-node/internal/ledger"
)

func TestStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("should report a reachable ledger", func(t *testing.T) {
		s := New(LedgerPinger{Ledger: iledger.New(iledger.NewMemoryStore())})
		status := s.Status(ctx)
		assert.Equal(t, map[string]bool{"ledger": true}, status)
	})

	t.Run("should report nothing when no pingers are registered", func(t *testing.T) {
		s := New()
		assert.Empty(t, s.Status(ctx))
	})
}
