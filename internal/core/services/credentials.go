package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/veridlabs/id-node/internal/core/domain"
	"github.com/veridlabs/id-node/internal/core/ports"
	"github.com/veridlabs/id-node/internal/log"
	"github.com/veridlabs/id-node/pkg/pubsub"
)

type credential struct {
	ledger ports.Ledger
	store  ports.ContentStore
	events pubsub.Publisher
}

// NewCredential creates a credential service over a ledger and a content store.
func NewCredential(ledger ports.Ledger, store ports.ContentStore, events pubsub.Publisher) ports.CredentialService {
	return &credential{
		ledger: ledger,
		store:  store,
		events: events,
	}
}

// Issue hashes the claim payload, pins the metadata document and submits the
// issuance to the ledger. The issuer signature is recovered locally first so
// a bad signature never reaches the ledger.
func (c *credential) Issue(ctx context.Context, req *ports.IssueCredentialRequest) (*ports.IssueCredentialResponse, error) {
	if len(req.CredentialData) == 0 {
		return nil, ErrEmptyCredentialData
	}
	if err := domain.ValidateDID(req.IssuerDID); err != nil {
		return nil, err
	}
	if err := domain.ValidateDID(req.SubjectDID); err != nil {
		return nil, err
	}

	credentialID := req.CredentialID
	if credentialID == "" {
		credentialID = uuid.NewString()
	}

	credentialHash := domain.HashCredentialData(req.CredentialData)

	msg := domain.BindingMessage(credentialID, req.IssuerDID, req.SubjectDID, credentialHash)
	signer, err := domain.RecoverSigner(msg, req.Signature)
	if err != nil {
		return nil, err
	}
	if signer != req.SigningIdentity {
		return nil, errors.Wrap(domain.ErrInvalidSignature, "signature does not match signing identity")
	}

	issuanceDate := time.Now().UTC()
	metadata := domain.MetadataDocument{
		CredentialID:   credentialID,
		IssuerDID:      req.IssuerDID,
		SubjectDID:     req.SubjectDID,
		CredentialType: req.CredentialType,
		CredentialData: req.CredentialData,
		IssuanceDate:   issuanceDate,
	}
	if !req.ExpirationDate.IsZero() {
		expiration := req.ExpirationDate.UTC()
		metadata.ExpirationDate = &expiration
	}

	uri, err := c.store.Put(ctx, metadata)
	if err != nil {
		log.Error(ctx, "pinning credential metadata", "err", err, "credentialID", credentialID)
		return nil, errors.Wrap(ErrContentStoreUnavailable, err.Error())
	}

	receipt, err := c.ledger.IssueCredential(ctx, &ports.IssueRequest{
		CredentialID:   credentialID,
		IssuerDID:      req.IssuerDID,
		SubjectDID:     req.SubjectDID,
		CredentialType: req.CredentialType,
		CredentialHash: credentialHash,
		MetadataURI:    uri,
		ExpirationDate: req.ExpirationDate,
		Signature:      req.Signature,
	})
	if err != nil {
		return nil, err
	}

	if err := c.events.Publish(ctx, pubsub.EventCredentialIssued, &pubsub.CredentialIssuedEvent{
		CredentialID: credentialID,
		IssuerDID:    req.IssuerDID,
		SubjectDID:   req.SubjectDID,
	}); err != nil {
		log.Error(ctx, "publishing credentialIssued event", "err", err, "credentialID", credentialID)
	}

	return &ports.IssueCredentialResponse{
		CredentialID:   credentialID,
		Receipt:        *receipt,
		MetadataURI:    uri,
		CredentialHash: credentialHash,
	}, nil
}

// Revoke moves a credential to the terminal Revoked state on behalf of signer.
func (c *credential) Revoke(ctx context.Context, credentialID string, signer common.Address) (*domain.TxReceipt, error) {
	if credentialID == "" {
		return nil, ErrEmptyCredentialID
	}

	receipt, err := c.ledger.RevokeCredential(ctx, credentialID, signer)
	if err != nil {
		return nil, err
	}

	event := &pubsub.CredentialRevokedEvent{CredentialID: credentialID}
	if cred, err := c.ledger.GetCredential(ctx, credentialID); err == nil {
		event.IssuerDID = cred.IssuerDID
	}
	if err := c.events.Publish(ctx, pubsub.EventCredentialRevoked, event); err != nil {
		log.Error(ctx, "publishing credentialRevoked event", "err", err, "credentialID", credentialID)
	}

	return receipt, nil
}

// ListBySubject returns every credential anchored for a subject, in issuance
// order. Metadata is fetched best effort, an unreachable content store
// degrades entries to Metadata=nil instead of failing the listing.
func (c *credential) ListBySubject(ctx context.Context, subjectDID string) ([]ports.SubjectCredential, error) {
	if err := domain.ValidateDID(subjectDID); err != nil {
		return nil, err
	}

	ids, err := c.ledger.GetCredentialsBySubject(ctx, subjectDID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	list := make([]ports.SubjectCredential, 0, len(ids))
	for _, id := range ids {
		cred, err := c.ledger.GetCredential(ctx, id)
		if err != nil {
			log.Error(ctx, "loading subject credential", "err", err, "credentialID", id)
			continue
		}

		entry := ports.SubjectCredential{
			Credential: *cred,
			IsValid:    cred.Verdict(now).IsValid,
		}

		var metadata json.RawMessage
		if err := c.store.Get(ctx, cred.MetadataURI, &metadata); err != nil {
			log.Warn(ctx, "fetching credential metadata", "err", err, "credentialID", id)
		} else {
			entry.Metadata = metadata
		}

		list = append(list, entry)
	}

	return list, nil
}
