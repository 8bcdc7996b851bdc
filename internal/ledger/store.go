package ledger

import (
	"context"

	"github.com/veridlabs/id-node/internal/core/domain"
)

// Store is the durable state behind the embedded ledger. Implementations must
// make each mutating call atomic: a credential insert and its subject index
// append happen in the same commit, and every commit advances the block
// counter exactly once. Precondition errors use the ports sentinels.
type Store interface {
	// CreateDID persists a new DID document and returns the commit block.
	// Fails with ports.ErrDIDAlreadyExists.
	CreateDID(ctx context.Context, doc *domain.DIDDocument) (uint64, error)
	// GetDID returns the stored document. Fails with ports.ErrDIDNotFound.
	GetDID(ctx context.Context, did string) (*domain.DIDDocument, error)
	// CreateCredential persists a new credential and appends its id to the
	// subject index in the same commit. Fails with ports.ErrCredentialAlreadyExists.
	CreateCredential(ctx context.Context, cred *domain.Credential) (uint64, error)
	// GetCredential returns the stored record. Fails with ports.ErrCredentialNotFound.
	GetCredential(ctx context.Context, credentialID string) (*domain.Credential, error)
	// RevokeCredential flips the status to Revoked. Fails with
	// ports.ErrCredentialNotFound or ports.ErrCredentialAlreadyRevoked.
	RevokeCredential(ctx context.Context, credentialID string) (uint64, error)
	// SubjectCredentials returns credential ids in insertion order.
	SubjectCredentials(ctx context.Context, subjectDID string) ([]string, error)
	// LatestBlock returns the current block height.
	LatestBlock(ctx context.Context) (uint64, error)
}
