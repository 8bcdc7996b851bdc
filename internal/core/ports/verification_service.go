package ports

import (
	"context"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"

	"github.com/veridlabs/id-node/internal/core/domain"
)

// VerifyCredentialQuery is the caller facing verification input. ExpectedHash
// is optional, when present the stored hash must match it.
type VerifyCredentialQuery struct {
	CredentialID string
	ExpectedHash *common.Hash
}

// VerifyCredentialOutcome joins the ledger verdict with best effort metadata.
// Metadata is nil when the content store fetch failed or the credential is invalid.
type VerifyCredentialOutcome struct {
	Result   domain.VerificationResult
	Metadata json.RawMessage
}

// VerificationService is the read side orchestration over the verifier
type VerificationService interface {
	Verify(ctx context.Context, q *VerifyCredentialQuery) (*VerifyCredentialOutcome, error)
	QuickVerify(ctx context.Context, credentialID string) (*QuickVerifyResult, error)
}
