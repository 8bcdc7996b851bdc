package ports

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/veridlabs/id-node/internal/core/domain"
)

// QuickVerifyResult is the cheap verdict used for UI badges
type QuickVerifyResult struct {
	IsValid   bool
	IssuerDID string
	Status    domain.CredentialStatus
}

// CredentialVerifier is the read side validity logic. It never fails open:
// an unknown credential yields IsValid=false with reason "not found".
type CredentialVerifier interface {
	// VerifyCredential computes validity from stored status and expiration.
	VerifyCredential(ctx context.Context, credentialID string) (domain.VerificationResult, error)
	// VerifyCredentialWithProof additionally compares the stored content hash
	// with an expected hash recomputed by the caller, reporting "hash mismatch".
	VerifyCredentialWithProof(ctx context.Context, credentialID string, expectedHash common.Hash) (domain.VerificationResult, error)
	// QuickVerify returns validity, issuer and status without the full record.
	QuickVerify(ctx context.Context, credentialID string) (QuickVerifyResult, error)
}
