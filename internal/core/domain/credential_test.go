package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCredentialVerdict(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("should be valid when active and without expiration", func(t *testing.T) {
		c := &Credential{ID: "c1", Status: StatusActive}
		res := c.Verdict(now)
		assert.True(t, res.IsValid)
		assert.Empty(t, res.Reason)
	})

	t.Run("should be valid when active and not yet expired", func(t *testing.T) {
		c := &Credential{ID: "c1", Status: StatusActive, ExpirationDate: now.Add(time.Hour)}
		res := c.Verdict(now)
		assert.True(t, res.IsValid)
	})

	t.Run("should report expired without mutating status", func(t *testing.T) {
		c := &Credential{ID: "c1", Status: StatusActive, ExpirationDate: now.Add(-time.Second)}
		res := c.Verdict(now)
		assert.False(t, res.IsValid)
		assert.Equal(t, ReasonExpired, res.Reason)
		assert.Equal(t, StatusActive, c.Status)
	})

	t.Run("should report revoked even when also expired", func(t *testing.T) {
		c := &Credential{ID: "c1", Status: StatusRevoked, ExpirationDate: now.Add(-time.Hour)}
		res := c.Verdict(now)
		assert.False(t, res.IsValid)
		assert.Equal(t, ReasonRevoked, res.Reason)
	})

	t.Run("should fail closed on pending", func(t *testing.T) {
		c := &Credential{ID: "c1", Status: StatusPending}
		res := c.Verdict(now)
		assert.False(t, res.IsValid)
		assert.Equal(t, ReasonPending, res.Reason)
	})
}

func TestCredentialStatusString(t *testing.T) {
	assert.Equal(t, "active", StatusActive.String())
	assert.Equal(t, "pending", StatusPending.String())
	assert.Equal(t, "revoked", StatusRevoked.String())
	assert.Equal(t, "unknown", CredentialStatus(9).String())
}

func TestValidateDID(t *testing.T) {
	for _, did := range []string{
		"did:example:alice",
		"did:ethr:0x9aF104...",
		"did:web:example.com:users:bob",
	} {
		assert.NoError(t, ValidateDID(did), did)
	}
	for _, did := range []string{
		"",
		"did:",
		"did:example",
		"notadid:example:alice",
		"did:EXAMPLE:alice",
	} {
		assert.Error(t, ValidateDID(did), did)
	}
}
