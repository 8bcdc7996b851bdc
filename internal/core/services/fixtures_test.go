package services

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/veridlabs/id-node/internal/core/domain"
	"github.com/veridlabs/id-node/internal/core/ports"
	"github.com/veridlabs/id-node/internal/ledger"
)

type issuerFixture struct {
	DID     string
	Key     *ecdsa.PrivateKey
	Address common.Address
}

func newIssuer(t *testing.T, l ports.Ledger, did string) issuerFixture {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := crypto.PubkeyToAddress(key.PublicKey)

	_, err = l.CreateDID(context.Background(), &ports.CreateDIDRequest{
		DID:             did,
		Controller:      addr,
		PublicKey:       "0x04deadbeef",
		ServiceEndpoint: "https://issuer.example.com",
	})
	require.NoError(t, err)

	return issuerFixture{DID: did, Key: key, Address: addr}
}

func newTestLedger() ports.Ledger {
	return ledger.New(ledger.NewMemoryStore())
}

func signedIssueRequest(t *testing.T, issuer issuerFixture, credentialID, subjectDID string, data json.RawMessage) *ports.IssueCredentialRequest {
	t.Helper()
	hash := domain.HashCredentialData(data)
	msg := domain.BindingMessage(credentialID, issuer.DID, subjectDID, hash)
	sig, err := domain.SignBinding(msg, issuer.Key)
	require.NoError(t, err)

	return &ports.IssueCredentialRequest{
		CredentialID:    credentialID,
		IssuerDID:       issuer.DID,
		SubjectDID:      subjectDID,
		CredentialType:  "DegreeCredential",
		CredentialData:  data,
		Signature:       sig,
		SigningIdentity: issuer.Address,
	}
}

// failingStore wraps a ContentStore and fails every Get. Used to exercise
// the partial result behavior of subject listings.
type failingStore struct {
	inner ports.ContentStore
}

func (s *failingStore) Put(ctx context.Context, doc any) (string, error) {
	return s.inner.Put(ctx, doc)
}

func (s *failingStore) Get(_ context.Context, _ string, _ any) error {
	return ErrContentStoreUnavailable
}
