package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridlabs/id-node/internal/cache"
	"github.com/veridlabs/id-node/internal/contentstore"
	"github.com/veridlabs/id-node/internal/core/domain"
	"github.com/veridlabs/id-node/internal/core/ports"
	"github.com/veridlabs/id-node/pkg/pubsub"
)

func TestVerify(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()
	store := contentstore.NewMemoryStore()
	creds := NewCredential(l, store, pubsub.NewMock())
	svc := NewVerification(l, store, cache.NewMemoryCache(), time.Minute)

	issuer := newIssuer(t, l, "did:verid:issuer1")
	data := json.RawMessage(`{"degree":"PhD"}`)
	_, err := creds.Issue(ctx, signedIssueRequest(t, issuer, "cred-1", "did:verid:subject1", data))
	require.NoError(t, err)

	t.Run("should verify an active credential and attach metadata", func(t *testing.T) {
		outcome, err := svc.Verify(ctx, &ports.VerifyCredentialQuery{CredentialID: "cred-1"})
		require.NoError(t, err)
		assert.True(t, outcome.Result.IsValid)
		assert.Empty(t, outcome.Result.Reason)
		require.NotNil(t, outcome.Metadata)

		var doc domain.MetadataDocument
		require.NoError(t, json.Unmarshal(outcome.Metadata, &doc))
		assert.JSONEq(t, string(data), string(doc.CredentialData))
	})

	t.Run("should fail closed on an unknown credential", func(t *testing.T) {
		outcome, err := svc.Verify(ctx, &ports.VerifyCredentialQuery{CredentialID: "missing"})
		require.NoError(t, err)
		assert.False(t, outcome.Result.IsValid)
		assert.Equal(t, domain.ReasonNotFound, outcome.Result.Reason)
		assert.Nil(t, outcome.Metadata)
	})

	t.Run("should accept a matching hash proof", func(t *testing.T) {
		hash := domain.HashCredentialData(data)
		outcome, err := svc.Verify(ctx, &ports.VerifyCredentialQuery{CredentialID: "cred-1", ExpectedHash: &hash})
		require.NoError(t, err)
		assert.True(t, outcome.Result.IsValid)
	})

	t.Run("should report a hash mismatch", func(t *testing.T) {
		tampered := domain.HashCredentialData(json.RawMessage(`{"degree":"forged"}`))
		outcome, err := svc.Verify(ctx, &ports.VerifyCredentialQuery{CredentialID: "cred-1", ExpectedHash: &tampered})
		require.NoError(t, err)
		assert.False(t, outcome.Result.IsValid)
		assert.Equal(t, domain.ReasonHashMismatch, outcome.Result.Reason)
	})

	t.Run("should report a revoked credential", func(t *testing.T) {
		_, err := creds.Revoke(ctx, "cred-1", issuer.Address)
		require.NoError(t, err)

		outcome, err := svc.Verify(ctx, &ports.VerifyCredentialQuery{CredentialID: "cred-1"})
		require.NoError(t, err)
		assert.False(t, outcome.Result.IsValid)
		assert.Equal(t, domain.ReasonRevoked, outcome.Result.Reason)
	})

	t.Run("should reject an empty credential id", func(t *testing.T) {
		_, err := svc.Verify(ctx, &ports.VerifyCredentialQuery{})
		assert.ErrorIs(t, err, ErrEmptyCredentialID)
	})
}

func TestQuickVerify(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()
	store := contentstore.NewMemoryStore()
	creds := NewCredential(l, store, pubsub.NewMock())
	svc := NewVerification(l, store, cache.NewMemoryCache(), time.Minute)

	issuer := newIssuer(t, l, "did:verid:issuer1")
	_, err := creds.Issue(ctx, signedIssueRequest(t, issuer, "cred-1", "did:verid:subject1", json.RawMessage(`{"a":1}`)))
	require.NoError(t, err)

	t.Run("should return the cheap verdict", func(t *testing.T) {
		result, err := svc.QuickVerify(ctx, "cred-1")
		require.NoError(t, err)
		assert.True(t, result.IsValid)
		assert.Equal(t, issuer.DID, result.IssuerDID)
		assert.Equal(t, domain.StatusActive, result.Status)
	})

	t.Run("should serve a cached verdict until the ttl elapses", func(t *testing.T) {
		_, err := creds.Revoke(ctx, "cred-1", issuer.Address)
		require.NoError(t, err)

		result, err := svc.QuickVerify(ctx, "cred-1")
		require.NoError(t, err)
		assert.True(t, result.IsValid)

		fresh := NewVerification(l, store, cache.NewMemoryCache(), time.Minute)
		result, err = fresh.QuickVerify(ctx, "cred-1")
		require.NoError(t, err)
		assert.False(t, result.IsValid)
		assert.Equal(t, domain.StatusRevoked, result.Status)
	})
}

func TestIdentity(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()
	events := pubsub.NewMock()
	svc := NewIdentity(l, cache.NewMemoryCache(), events, time.Minute)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	controller := crypto.PubkeyToAddress(key.PublicKey)

	t.Run("should create a did and publish the event", func(t *testing.T) {
		receipt, err := svc.Create(ctx, &ports.CreateDIDRequest{
			DID:             "did:verid:alice",
			Controller:      controller,
			PublicKey:       "0x04cafe",
			ServiceEndpoint: "https://alice.example.com",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, receipt.TxID)

		published := events.Published(pubsub.EventDIDCreated)
		require.Len(t, published, 1)
		var ev pubsub.DIDCreatedEvent
		require.NoError(t, ev.Unmarshal(published[0]))
		assert.Equal(t, "did:verid:alice", ev.DID)
		assert.Equal(t, controller.Hex(), ev.Controller)
	})

	t.Run("should resolve the document and serve it from cache", func(t *testing.T) {
		doc, err := svc.Get(ctx, "did:verid:alice")
		require.NoError(t, err)
		assert.Equal(t, controller, doc.Controller)
		assert.True(t, doc.Active)

		again, err := svc.Get(ctx, "did:verid:alice")
		require.NoError(t, err)
		assert.Equal(t, doc.DID, again.DID)
	})

	t.Run("should reject a malformed did", func(t *testing.T) {
		_, err := svc.Get(ctx, "not-a-did")
		assert.ErrorIs(t, err, domain.ErrInvalidDID)
	})

	t.Run("should fail on an unknown did", func(t *testing.T) {
		_, err := svc.Get(ctx, "did:verid:bob")
		assert.ErrorIs(t, err, ports.ErrDIDNotFound)
	})

	t.Run("should verify the controller", func(t *testing.T) {
		ok, err := svc.VerifyController(ctx, "did:verid:alice", controller)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
