package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"

	"github.com/veridlabs/id-node/internal/core/ports"
)

// IssueCredentialRequest is the POST /v1/credentials/issue payload. Signature
// is the hex encoded issuer signature over the binding message, produced
// client side. The node never receives private keys.
type IssueCredentialRequest struct {
	CredentialID    string          `json:"credentialId,omitempty"`
	IssuerDID       string          `json:"issuerDID"`
	SubjectDID      string          `json:"subjectDID"`
	CredentialType  string          `json:"credentialType"`
	CredentialData  json.RawMessage `json:"credentialData"`
	ExpirationDate  *time.Time      `json:"expirationDate,omitempty"`
	Signature       string          `json:"signature"`
	SigningIdentity string          `json:"signingIdentity"`
}

// IssueCredentialResponse returns the derived artifacts of an issuance
type IssueCredentialResponse struct {
	CredentialID   string    `json:"credentialId"`
	CredentialHash string    `json:"credentialHash"`
	MetadataURI    string    `json:"metadataURI"`
	Receipt        TxReceipt `json:"receipt"`
}

// IssueCredential handles POST /v1/credentials/issue
func (s *Server) IssueCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req IssueCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json body"})
		return
	}

	signature, err := hexutil.Decode(req.Signature)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "signature must be hex encoded"})
		return
	}
	if !common.IsHexAddress(req.SigningIdentity) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "signingIdentity must be a hex address"})
		return
	}

	issueReq := &ports.IssueCredentialRequest{
		CredentialID:    req.CredentialID,
		IssuerDID:       req.IssuerDID,
		SubjectDID:      req.SubjectDID,
		CredentialType:  req.CredentialType,
		CredentialData:  req.CredentialData,
		Signature:       signature,
		SigningIdentity: common.HexToAddress(req.SigningIdentity),
	}
	if req.ExpirationDate != nil {
		issueReq.ExpirationDate = *req.ExpirationDate
	}

	resp, err := s.credentials.Issue(ctx, issueReq)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, IssueCredentialResponse{
		CredentialID:   resp.CredentialID,
		CredentialHash: resp.CredentialHash.Hex(),
		MetadataURI:    resp.MetadataURI,
		Receipt:        toTxReceipt(&resp.Receipt),
	})
}

// RevokeCredentialRequest is the POST /v1/credentials/revoke payload. Signer
// is the issuer controller address on whose behalf the revocation runs.
type RevokeCredentialRequest struct {
	CredentialID string `json:"credentialId"`
	Signer       string `json:"signer"`
}

// RevokeCredentialResponse returns the commit proof of a revocation
type RevokeCredentialResponse struct {
	CredentialID string    `json:"credentialId"`
	Receipt      TxReceipt `json:"receipt"`
}

// RevokeCredential handles POST /v1/credentials/revoke
func (s *Server) RevokeCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RevokeCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json body"})
		return
	}
	if !common.IsHexAddress(req.Signer) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "signer must be a hex address"})
		return
	}

	receipt, err := s.credentials.Revoke(ctx, req.CredentialID, common.HexToAddress(req.Signer))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, RevokeCredentialResponse{
		CredentialID: req.CredentialID,
		Receipt:      toTxReceipt(receipt),
	})
}

// ListBySubjectResponse is the subject listing payload. Entries with a nil
// metadata field were anchored but their document could not be fetched.
type ListBySubjectResponse struct {
	SubjectDID  string              `json:"subjectDID"`
	Credentials []SubjectCredential `json:"credentials"`
}

// ListBySubject handles GET /v1/credentials/subject/{subjectDID}
func (s *Server) ListBySubject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectDID := chi.URLParam(r, "subjectDID")

	list, err := s.credentials.ListBySubject(ctx, subjectDID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, ListBySubjectResponse{
		SubjectDID:  subjectDID,
		Credentials: toSubjectCredentials(list),
	})
}
