package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/veridlabs/id-node/internal/cache"
	"github.com/veridlabs/id-node/internal/core/domain"
	"github.com/veridlabs/id-node/internal/core/ports"
	"github.com/veridlabs/id-node/internal/log"
)

type verification struct {
	ledger   ports.Ledger
	store    ports.ContentStore
	cache    cache.Cache
	quickTTL time.Duration
}

// NewVerification creates the read side verification service.
func NewVerification(ledger ports.Ledger, store ports.ContentStore, cachex cache.Cache, quickTTL time.Duration) ports.VerificationService {
	return &verification{
		ledger:   ledger,
		store:    store,
		cache:    cachex,
		quickTTL: quickTTL,
	}
}

// Verify runs the full verification, optionally with a hash proof, and joins
// the verdict with the off chain metadata when the credential is valid.
func (v *verification) Verify(ctx context.Context, q *ports.VerifyCredentialQuery) (*ports.VerifyCredentialOutcome, error) {
	if q.CredentialID == "" {
		return nil, ErrEmptyCredentialID
	}

	var (
		result domain.VerificationResult
		err    error
	)
	if q.ExpectedHash != nil {
		result, err = v.ledger.VerifyCredentialWithProof(ctx, q.CredentialID, *q.ExpectedHash)
	} else {
		result, err = v.ledger.VerifyCredential(ctx, q.CredentialID)
	}
	if err != nil {
		return nil, err
	}

	outcome := &ports.VerifyCredentialOutcome{Result: result}
	if result.IsValid && result.Credential != nil {
		var metadata json.RawMessage
		if err := v.store.Get(ctx, result.Credential.MetadataURI, &metadata); err != nil {
			log.Warn(ctx, "fetching credential metadata", "err", err, "credentialID", q.CredentialID)
		} else {
			outcome.Metadata = metadata
		}
	}

	return outcome, nil
}

// QuickVerify returns the cheap verdict, serving repeated checks from cache.
// Only short TTLs are sane here, a cached verdict survives a revocation until
// it expires.
func (v *verification) QuickVerify(ctx context.Context, credentialID string) (*ports.QuickVerifyResult, error) {
	if credentialID == "" {
		return nil, ErrEmptyCredentialID
	}

	var cached ports.QuickVerifyResult
	if v.cache.Get(ctx, quickVerifyCacheKey(credentialID), &cached) {
		return &cached, nil
	}

	result, err := v.ledger.QuickVerify(ctx, credentialID)
	if err != nil {
		return nil, err
	}

	if err := v.cache.Set(ctx, quickVerifyCacheKey(credentialID), result, v.quickTTL); err != nil {
		log.Warn(ctx, "caching quick verify result", "err", err, "credentialID", credentialID)
	}

	return &result, nil
}

func quickVerifyCacheKey(credentialID string) string {
	return "quick-verify:" + credentialID
}
