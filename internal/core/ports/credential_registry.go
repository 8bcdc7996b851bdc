package ports

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/veridlabs/id-node/internal/core/domain"
)

// IssueRequest is the ledger transaction payload for a credential issuance.
// Signature is the issuer's ECDSA signature over the canonical binding
// message, produced client side. The registry recovers the signer and
// requires it to match the issuer DID controller.
type IssueRequest struct {
	CredentialID   string
	IssuerDID      string
	SubjectDID     string
	CredentialType string
	CredentialHash common.Hash
	MetadataURI    string
	ExpirationDate time.Time
	Signature      []byte
}

// CredentialRegistry is the ledger side credential state machine
type CredentialRegistry interface {
	// IssueCredential commits a new credential record with status Active.
	// Fails with ErrCredentialAlreadyExists, ErrDIDNotFound, ErrDIDInactive,
	// ErrNotController or domain.ErrInvalidSignature.
	IssueCredential(ctx context.Context, req *IssueRequest) (*domain.TxReceipt, error)
	// RevokeCredential moves a credential to the terminal Revoked state. Only
	// the issuer DID controller may revoke. Fails with ErrCredentialNotFound,
	// ErrCredentialAlreadyRevoked or ErrNotController.
	RevokeCredential(ctx context.Context, credentialID string, caller common.Address) (*domain.TxReceipt, error)
	// GetCredential returns the stored record. Fails with ErrCredentialNotFound.
	GetCredential(ctx context.Context, credentialID string) (*domain.Credential, error)
	// GetCredentialsBySubject returns credential ids in issuance order. The
	// result is possibly empty, an unknown subject is not an error.
	GetCredentialsBySubject(ctx context.Context, subjectDID string) ([]string, error)
}
