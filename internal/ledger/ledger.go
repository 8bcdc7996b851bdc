// Package ledger implements a single node embedded ledger executing the DID
// registry, credential registry and verifier rules. Mutating operations are
// serialized by a commit lock, so concurrent conflicting transactions resolve
// deterministically: exactly one wins, the others fail with the corresponding
// precondition error.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/veridlabs/id-node/internal/core/domain"
	"github.com/veridlabs/id-node/internal/core/ports"
)

// Ledger is the embedded implementation of ports.Ledger
type Ledger struct {
	store Store

	mu  sync.Mutex // commit lock, one mutating transaction at a time
	now func() time.Time
}

// New returns an embedded ledger over the given store
func New(store Store) *Ledger {
	return &Ledger{
		store: store,
		now:   time.Now,
	}
}

// CreateDID registers a new DID document controlled by req.Controller
func (l *Ledger) CreateDID(ctx context.Context, req *ports.CreateDIDRequest) (*domain.TxReceipt, error) {
	if err := domain.ValidateDID(req.DID); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UTC()
	doc := &domain.DIDDocument{
		DID:             req.DID,
		Controller:      req.Controller,
		PublicKey:       req.PublicKey,
		ServiceEndpoint: req.ServiceEndpoint,
		Created:         now,
		Updated:         now,
		Active:          true,
	}
	block, err := l.store.CreateDID(ctx, doc)
	if err != nil {
		return nil, err
	}
	return l.receipt(block, now), nil
}

// GetDIDDocument resolves a DID to its document
func (l *Ledger) GetDIDDocument(ctx context.Context, did string) (*domain.DIDDocument, error) {
	return l.store.GetDID(ctx, did)
}

// VerifyController returns true iff did exists, is active and is controlled
// by identity
func (l *Ledger) VerifyController(ctx context.Context, did string, identity common.Address) (bool, error) {
	doc, err := l.store.GetDID(ctx, did)
	if err != nil {
		if errors.Is(err, ports.ErrDIDNotFound) {
			return false, nil
		}
		return false, err
	}
	return doc.Active && doc.Controller == identity, nil
}

// IssueCredential validates and commits a new credential record.
// Preconditions are checked in order: duplicate id, unknown or inactive
// issuer DID, signer recovery and controller match. The subject index append
// is part of the same commit.
func (l *Ledger) IssueCredential(ctx context.Context, req *ports.IssueRequest) (*domain.TxReceipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.store.GetCredential(ctx, req.CredentialID); err == nil {
		return nil, ports.ErrCredentialAlreadyExists
	} else if !errors.Is(err, ports.ErrCredentialNotFound) {
		return nil, err
	}

	issuer, err := l.store.GetDID(ctx, req.IssuerDID)
	if err != nil {
		return nil, err
	}
	if !issuer.Active {
		return nil, ports.ErrDIDInactive
	}

	msg := domain.BindingMessage(req.CredentialID, req.IssuerDID, req.SubjectDID, req.CredentialHash)
	signer, err := domain.RecoverSigner(msg, req.Signature)
	if err != nil {
		return nil, err
	}
	if signer != issuer.Controller {
		return nil, ports.ErrNotController
	}

	now := l.now().UTC()
	cred := &domain.Credential{
		ID:             req.CredentialID,
		IssuerDID:      req.IssuerDID,
		SubjectDID:     req.SubjectDID,
		CredentialType: req.CredentialType,
		CredentialHash: req.CredentialHash,
		MetadataURI:    req.MetadataURI,
		IssuanceDate:   now,
		ExpirationDate: req.ExpirationDate,
		Status:         domain.StatusActive,
		Signature:      req.Signature,
	}
	block, err := l.store.CreateCredential(ctx, cred)
	if err != nil {
		return nil, err
	}
	return l.receipt(block, now), nil
}

// RevokeCredential moves a credential to the terminal Revoked state. Only the
// controller of the issuer DID may revoke.
func (l *Ledger) RevokeCredential(ctx context.Context, credentialID string, caller common.Address) (*domain.TxReceipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cred, err := l.store.GetCredential(ctx, credentialID)
	if err != nil {
		return nil, err
	}
	if cred.Status == domain.StatusRevoked {
		return nil, ports.ErrCredentialAlreadyRevoked
	}

	issuer, err := l.store.GetDID(ctx, cred.IssuerDID)
	if err != nil {
		return nil, fmt.Errorf("resolving issuer of %s: %w", credentialID, err)
	}
	if issuer.Controller != caller {
		return nil, ports.ErrNotController
	}

	block, err := l.store.RevokeCredential(ctx, credentialID)
	if err != nil {
		return nil, err
	}
	return l.receipt(block, l.now().UTC()), nil
}

// GetCredential returns the stored credential record
func (l *Ledger) GetCredential(ctx context.Context, credentialID string) (*domain.Credential, error) {
	return l.store.GetCredential(ctx, credentialID)
}

// GetCredentialsBySubject returns credential ids in issuance order
func (l *Ledger) GetCredentialsBySubject(ctx context.Context, subjectDID string) ([]string, error) {
	return l.store.SubjectCredentials(ctx, subjectDID)
}

// VerifyCredential computes the read side verdict. An unknown credential
// fails closed with reason "not found" and no error.
func (l *Ledger) VerifyCredential(ctx context.Context, credentialID string) (domain.VerificationResult, error) {
	now := l.now().UTC()
	cred, err := l.store.GetCredential(ctx, credentialID)
	if err != nil {
		if errors.Is(err, ports.ErrCredentialNotFound) {
			return domain.VerificationResult{Reason: domain.ReasonNotFound, VerifiedAt: now}, nil
		}
		return domain.VerificationResult{}, err
	}
	return cred.Verdict(now), nil
}

// VerifyCredentialWithProof recomputes validity against a caller supplied
// content hash, reporting "hash mismatch" when the stored hash differs.
func (l *Ledger) VerifyCredentialWithProof(ctx context.Context, credentialID string, expectedHash common.Hash) (domain.VerificationResult, error) {
	res, err := l.VerifyCredential(ctx, credentialID)
	if err != nil || res.Credential == nil {
		return res, err
	}
	if res.Credential.CredentialHash != expectedHash {
		res.IsValid = false
		res.Reason = domain.ReasonHashMismatch
	}
	return res, nil
}

// QuickVerify returns the cheap verdict used for UI badges
func (l *Ledger) QuickVerify(ctx context.Context, credentialID string) (ports.QuickVerifyResult, error) {
	res, err := l.VerifyCredential(ctx, credentialID)
	if err != nil {
		return ports.QuickVerifyResult{}, err
	}
	if res.Credential == nil {
		return ports.QuickVerifyResult{}, nil
	}
	return ports.QuickVerifyResult{
		IsValid:   res.IsValid,
		IssuerDID: res.Credential.IssuerDID,
		Status:    res.Credential.Status,
	}, nil
}

// LatestBlock returns the current block height
func (l *Ledger) LatestBlock(ctx context.Context) (uint64, error) {
	return l.store.LatestBlock(ctx)
}

func (l *Ledger) receipt(block uint64, ts time.Time) *domain.TxReceipt {
	return &domain.TxReceipt{
		TxID:        uuid.NewString(),
		BlockNumber: block,
		Timestamp:   ts,
	}
}
