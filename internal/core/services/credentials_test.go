package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridlabs/id-node/internal/contentstore"
	"github.com/veridlabs/id-node/internal/core/domain"
	"github.com/veridlabs/id-node/internal/core/ports"
	"github.com/veridlabs/id-node/pkg/pubsub"
)

func TestIssue(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()
	store := contentstore.NewMemoryStore()
	events := pubsub.NewMock()
	svc := NewCredential(l, store, events)

	issuer := newIssuer(t, l, "did:verid:issuer1")
	data := json.RawMessage(`{"degree":"BSc","university":"MIT"}`)

	t.Run("should issue a credential and pin its metadata", func(t *testing.T) {
		req := signedIssueRequest(t, issuer, "cred-1", "did:verid:subject1", data)
		resp, err := svc.Issue(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, "cred-1", resp.CredentialID)
		assert.Equal(t, domain.HashCredentialData(data), resp.CredentialHash)
		assert.NotEmpty(t, resp.Receipt.TxID)
		assert.NotZero(t, resp.Receipt.BlockNumber)

		var metadata domain.MetadataDocument
		require.NoError(t, store.Get(ctx, resp.MetadataURI, &metadata))
		assert.Equal(t, "cred-1", metadata.CredentialID)
		assert.Equal(t, issuer.DID, metadata.IssuerDID)
		assert.JSONEq(t, string(data), string(metadata.CredentialData))

		published := events.Published(pubsub.EventCredentialIssued)
		require.Len(t, published, 1)
		var ev pubsub.CredentialIssuedEvent
		require.NoError(t, ev.Unmarshal(published[0]))
		assert.Equal(t, "cred-1", ev.CredentialID)
	})

	t.Run("should reject empty credential data", func(t *testing.T) {
		req := signedIssueRequest(t, issuer, "cred-2", "did:verid:subject1", data)
		req.CredentialData = nil
		_, err := svc.Issue(ctx, req)
		assert.ErrorIs(t, err, ErrEmptyCredentialData)
	})

	t.Run("should reject a signature from another identity", func(t *testing.T) {
		other := newIssuer(t, l, "did:verid:issuer2")
		req := signedIssueRequest(t, issuer, "cred-3", "did:verid:subject1", data)
		req.SigningIdentity = other.Address
		_, err := svc.Issue(ctx, req)
		assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	})

	t.Run("should reject a duplicate credential id", func(t *testing.T) {
		req := signedIssueRequest(t, issuer, "cred-1", "did:verid:subject1", data)
		_, err := svc.Issue(ctx, req)
		assert.ErrorIs(t, err, ports.ErrCredentialAlreadyExists)
	})

	t.Run("should reject an unknown issuer did", func(t *testing.T) {
		ghost := issuerFixture{DID: "did:verid:ghost", Key: issuer.Key, Address: issuer.Address}
		req := signedIssueRequest(t, ghost, "cred-4", "did:verid:subject1", data)
		_, err := svc.Issue(ctx, req)
		assert.ErrorIs(t, err, ports.ErrDIDNotFound)
	})
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()
	store := contentstore.NewMemoryStore()
	events := pubsub.NewMock()
	svc := NewCredential(l, store, events)

	issuer := newIssuer(t, l, "did:verid:issuer1")
	data := json.RawMessage(`{"degree":"MSc"}`)
	_, err := svc.Issue(ctx, signedIssueRequest(t, issuer, "cred-1", "did:verid:subject1", data))
	require.NoError(t, err)

	t.Run("should refuse a revocation from a non controller", func(t *testing.T) {
		other := newIssuer(t, l, "did:verid:issuer2")
		_, err := svc.Revoke(ctx, "cred-1", other.Address)
		assert.ErrorIs(t, err, ports.ErrNotController)
	})

	t.Run("should revoke and publish the event", func(t *testing.T) {
		receipt, err := svc.Revoke(ctx, "cred-1", issuer.Address)
		require.NoError(t, err)
		assert.NotEmpty(t, receipt.TxID)

		cred, err := l.GetCredential(ctx, "cred-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRevoked, cred.Status)

		published := events.Published(pubsub.EventCredentialRevoked)
		require.Len(t, published, 1)
		var ev pubsub.CredentialRevokedEvent
		require.NoError(t, ev.Unmarshal(published[0]))
		assert.Equal(t, issuer.DID, ev.IssuerDID)
	})

	t.Run("should refuse to revoke twice", func(t *testing.T) {
		_, err := svc.Revoke(ctx, "cred-1", issuer.Address)
		assert.ErrorIs(t, err, ports.ErrCredentialAlreadyRevoked)
	})

	t.Run("should refuse an empty credential id", func(t *testing.T) {
		_, err := svc.Revoke(ctx, "", issuer.Address)
		assert.ErrorIs(t, err, ErrEmptyCredentialID)
	})
}

func TestListBySubject(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()
	store := contentstore.NewMemoryStore()
	events := pubsub.NewMock()
	svc := NewCredential(l, store, events)

	issuer := newIssuer(t, l, "did:verid:issuer1")
	subject := "did:verid:subject1"
	_, err := svc.Issue(ctx, signedIssueRequest(t, issuer, "cred-1", subject, json.RawMessage(`{"n":1}`)))
	require.NoError(t, err)
	_, err = svc.Issue(ctx, signedIssueRequest(t, issuer, "cred-2", subject, json.RawMessage(`{"n":2}`)))
	require.NoError(t, err)
	_, err = svc.Revoke(ctx, "cred-2", issuer.Address)
	require.NoError(t, err)

	t.Run("should list credentials in issuance order with validity", func(t *testing.T) {
		list, err := svc.ListBySubject(ctx, subject)
		require.NoError(t, err)
		require.Len(t, list, 2)

		assert.Equal(t, "cred-1", list[0].Credential.ID)
		assert.True(t, list[0].IsValid)
		assert.JSONEq(t, `{"n":1}`, metadataData(t, list[0].Metadata))

		assert.Equal(t, "cred-2", list[1].Credential.ID)
		assert.False(t, list[1].IsValid)
	})

	t.Run("should return an empty list for an unknown subject", func(t *testing.T) {
		list, err := svc.ListBySubject(ctx, "did:verid:nobody")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("should keep entries when the content store is down", func(t *testing.T) {
		degraded := NewCredential(l, &failingStore{inner: store}, events)
		list, err := degraded.ListBySubject(ctx, subject)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Nil(t, list[0].Metadata)
		assert.Nil(t, list[1].Metadata)
	})
}

func metadataData(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var doc domain.MetadataDocument
	require.NoError(t, json.Unmarshal(raw, &doc))
	return string(doc.CredentialData)
}
