package gateways

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/veridlabs/id-node/internal/core/domain"
	"github.com/veridlabs/id-node/internal/core/ports"
)

// verificationRecord mirrors the VerificationResult tuple of the verifier
// contract.
type verificationRecord struct {
	IsValid               bool
	CredentialId          string
	IssuerDID             string
	SubjectDID            string
	VerificationTimestamp *big.Int
	Reason                string
}

// VerifyCredential computes the verdict from the stored record. An unknown
// credential yields an invalid result, not an error.
func (l *Ledger) VerifyCredential(ctx context.Context, credentialID string) (domain.VerificationResult, error) {
	now := time.Now().UTC()
	cred, err := l.GetCredential(ctx, credentialID)
	if errors.Is(err, ports.ErrCredentialNotFound) {
		return domain.VerificationResult{Reason: domain.ReasonNotFound, VerifiedAt: now}, nil
	}
	if err != nil {
		return domain.VerificationResult{}, err
	}
	return cred.Verdict(now), nil
}

// VerifyCredentialWithProof delegates the hash comparison to the verifier
// contract and attaches the stored record to the result.
func (l *Ledger) VerifyCredentialWithProof(ctx context.Context, credentialID string, expectedHash common.Hash) (domain.VerificationResult, error) {
	var out []interface{}
	if err := l.call(ctx, l.verifier, &out, "verifyCredentialWithProof", credentialID, expectedHash.Hex()); err != nil {
		return domain.VerificationResult{}, err
	}

	record := *abi.ConvertType(out[0], new(verificationRecord)).(*verificationRecord)
	result := domain.VerificationResult{
		IsValid:    record.IsValid,
		Reason:     record.Reason,
		VerifiedAt: time.Unix(record.VerificationTimestamp.Int64(), 0).UTC(),
	}
	if record.CredentialId != "" {
		cred, err := l.GetCredential(ctx, credentialID)
		if err == nil {
			result.Credential = cred
		}
	}
	return result, nil
}

// QuickVerify returns the cheap verdict from the verifier contract.
func (l *Ledger) QuickVerify(ctx context.Context, credentialID string) (ports.QuickVerifyResult, error) {
	var out []interface{}
	if err := l.call(ctx, l.verifier, &out, "quickVerify", credentialID); err != nil {
		return ports.QuickVerifyResult{}, err
	}

	return ports.QuickVerifyResult{
		IsValid:   *abi.ConvertType(out[0], new(bool)).(*bool),
		IssuerDID: *abi.ConvertType(out[1], new(string)).(*string),
		Status:    domain.CredentialStatus(*abi.ConvertType(out[2], new(uint8)).(*uint8)),
	}, nil
}
