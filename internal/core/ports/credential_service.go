package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/veridlabs/id-node/internal/core/domain"
)

// IssueCredentialRequest is the caller facing issuance input. CredentialData
// is the raw JSON claim payload that gets hashed and stored off chain.
type IssueCredentialRequest struct {
	CredentialID    string
	IssuerDID       string
	SubjectDID      string
	CredentialType  string
	CredentialData  json.RawMessage
	ExpirationDate  time.Time // zero value means no expiration
	Signature       []byte
	SigningIdentity common.Address
}

// IssueCredentialResponse returns the commit proof plus the derived artifacts
type IssueCredentialResponse struct {
	CredentialID   string
	Receipt        domain.TxReceipt
	MetadataURI    string
	CredentialHash common.Hash
}

// SubjectCredential is one entry of a subject listing. Metadata is nil when
// the content store lookup failed, the entry is still returned.
type SubjectCredential struct {
	Credential domain.Credential
	IsValid    bool
	Metadata   json.RawMessage
}

// CredentialService orchestrates issuance, revocation and subject listings
type CredentialService interface {
	Issue(ctx context.Context, req *IssueCredentialRequest) (*IssueCredentialResponse, error)
	Revoke(ctx context.Context, credentialID string, signer common.Address) (*domain.TxReceipt, error)
	ListBySubject(ctx context.Context, subjectDID string) ([]SubjectCredential, error)
}
