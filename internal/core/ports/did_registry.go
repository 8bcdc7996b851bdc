package ports

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/veridlabs/id-node/internal/core/domain"
)

// CreateDIDRequest carries the data needed to register a DID document
type CreateDIDRequest struct {
	DID             string
	Controller      common.Address
	PublicKey       string
	ServiceEndpoint string
}

// DIDRegistry is the ledger side DID document registry
type DIDRegistry interface {
	// CreateDID registers a new DID document. Fails with ErrDIDAlreadyExists
	// when the DID is taken.
	CreateDID(ctx context.Context, req *CreateDIDRequest) (*domain.TxReceipt, error)
	// GetDIDDocument resolves a DID. Fails with ErrDIDNotFound.
	GetDIDDocument(ctx context.Context, did string) (*domain.DIDDocument, error)
	// VerifyController returns true iff the DID exists, is active and is
	// controlled by the given identity.
	VerifyController(ctx context.Context, did string, identity common.Address) (bool, error)
}
