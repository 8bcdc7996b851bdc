package domain

import (
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// CredentialStatus is the stored lifecycle state of a credential.
// Revoked is terminal. Expiration is never stored as a status, it is
// computed at read time from ExpirationDate.
type CredentialStatus uint8

// Credential lifecycle states. Values match the on chain enum.
const (
	StatusActive  CredentialStatus = 0
	StatusPending CredentialStatus = 1
	StatusRevoked CredentialStatus = 2
)

// String satisfies fmt.Stringer for CredentialStatus
func (s CredentialStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusPending:
		return "pending"
	case StatusRevoked:
		return "revoked"
	}
	return "unknown"
}

// Verification reasons returned to callers. Empty means valid.
const (
	ReasonNotFound     = "not found"
	ReasonRevoked      = "revoked"
	ReasonExpired      = "expired"
	ReasonPending      = "pending"
	ReasonHashMismatch = "hash mismatch"
)

// Credential is the on ledger record binding an issuer, a subject and a
// content hash. Immutable after issuance except for the Active to Revoked
// status transition.
type Credential struct {
	ID             string
	IssuerDID      string
	SubjectDID     string
	CredentialType string
	CredentialHash common.Hash
	MetadataURI    string
	IssuanceDate   time.Time
	ExpirationDate time.Time // zero value means no expiration
	Status         CredentialStatus
	Signature      []byte
}

// Expired reports whether the credential has an expiration date in the past.
func (c *Credential) Expired(now time.Time) bool {
	return !c.ExpirationDate.IsZero() && !c.ExpirationDate.After(now)
}

// Verdict computes the read side validity of the credential at the given
// instant. The stored status is never mutated by the passage of time.
func (c *Credential) Verdict(now time.Time) VerificationResult {
	res := VerificationResult{Credential: c, VerifiedAt: now}
	switch {
	case c.Status == StatusRevoked:
		res.Reason = ReasonRevoked
	case c.Status == StatusPending:
		res.Reason = ReasonPending
	case c.Expired(now):
		res.Reason = ReasonExpired
	default:
		res.IsValid = true
	}
	return res
}

// VerificationResult is the outcome of a verifier read. Reason is one of the
// reason constants above and empty when the credential is valid.
type VerificationResult struct {
	IsValid    bool
	Reason     string
	Credential *Credential
	VerifiedAt time.Time
}

// MetadataDocument is the off chain metadata stored in the content store at
// issuance time. CredentialHash must equal the hash of CredentialData.
type MetadataDocument struct {
	CredentialID   string          `json:"credentialId"`
	IssuerDID      string          `json:"issuerDID"`
	SubjectDID     string          `json:"subjectDID"`
	CredentialType string          `json:"credentialType"`
	CredentialData json.RawMessage `json:"credentialData"`
	IssuanceDate   time.Time       `json:"issuanceDate"`
	ExpirationDate *time.Time      `json:"expirationDate"`
}

// TxReceipt is the ledger commit proof returned by mutating registry operations.
type TxReceipt struct {
	TxID        string
	BlockNumber uint64
	Timestamp   time.Time
}
