package ports

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/veridlabs/id-node/internal/core/domain"
)

// IdentityService orchestrates DID operations for the API layer
type IdentityService interface {
	Create(ctx context.Context, req *CreateDIDRequest) (*domain.TxReceipt, error)
	Get(ctx context.Context, did string) (*domain.DIDDocument, error)
	VerifyController(ctx context.Context, did string, identity common.Address) (bool, error)
}
