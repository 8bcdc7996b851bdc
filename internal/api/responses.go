package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/veridlabs/id-node/internal/common"
	"github.com/veridlabs/id-node/internal/core/domain"
	"github.com/veridlabs/id-node/internal/core/ports"
)

// ErrorResponse is the error payload of every non 2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

// TxReceipt is the commit proof of a mutating operation
type TxReceipt struct {
	TxID        string    `json:"txId"`
	BlockNumber uint64    `json:"blockNumber"`
	Timestamp   time.Time `json:"timestamp"`
}

// Credential is the API view of an anchored credential
type Credential struct {
	ID             string     `json:"id"`
	IssuerDID      string     `json:"issuerDID"`
	SubjectDID     string     `json:"subjectDID"`
	CredentialType string     `json:"credentialType"`
	CredentialHash string     `json:"credentialHash"`
	MetadataURI    string     `json:"metadataURI"`
	IssuanceDate   time.Time  `json:"issuanceDate"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
	Status         string     `json:"status"`
}

// DIDDocument is the API view of a resolved DID
type DIDDocument struct {
	DID             string    `json:"did"`
	Controller      string    `json:"controller"`
	PublicKey       string    `json:"publicKey"`
	ServiceEndpoint string    `json:"serviceEndpoint"`
	Created         time.Time `json:"created"`
	Updated         time.Time `json:"updated"`
	Active          bool      `json:"active"`
}

func toTxReceipt(receipt *domain.TxReceipt) TxReceipt {
	return TxReceipt{
		TxID:        receipt.TxID,
		BlockNumber: receipt.BlockNumber,
		Timestamp:   receipt.Timestamp,
	}
}

func toCredential(cred *domain.Credential) Credential {
	out := Credential{
		ID:             cred.ID,
		IssuerDID:      cred.IssuerDID,
		SubjectDID:     cred.SubjectDID,
		CredentialType: cred.CredentialType,
		CredentialHash: cred.CredentialHash.Hex(),
		MetadataURI:    cred.MetadataURI,
		IssuanceDate:   cred.IssuanceDate,
		Status:         cred.Status.String(),
	}
	if !cred.ExpirationDate.IsZero() {
		out.ExpirationDate = common.ToPointer(cred.ExpirationDate)
	}
	return out
}

func toDIDDocument(doc *domain.DIDDocument) DIDDocument {
	return DIDDocument{
		DID:             doc.DID,
		Controller:      doc.Controller.Hex(),
		PublicKey:       doc.PublicKey,
		ServiceEndpoint: doc.ServiceEndpoint,
		Created:         doc.Created,
		Updated:         doc.Updated,
		Active:          doc.Active,
	}
}

// SubjectCredential is one entry of a subject listing
type SubjectCredential struct {
	Credential Credential      `json:"credential"`
	IsValid    bool            `json:"isValid"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

func toSubjectCredentials(list []ports.SubjectCredential) []SubjectCredential {
	out := make([]SubjectCredential, len(list))
	for i, entry := range list {
		out[i] = SubjectCredential{
			Credential: toCredential(&entry.Credential),
			IsValid:    entry.IsValid,
			Metadata:   entry.Metadata,
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
