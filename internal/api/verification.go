package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"github.com/veridlabs/id-node/internal/core/ports"
)

// VerifyCredentialRequest is the POST /v1/credentials/verify payload.
// ExpectedHash is optional, when present the stored hash must match it.
type VerifyCredentialRequest struct {
	CredentialID string `json:"credentialId"`
	ExpectedHash string `json:"expectedHash,omitempty"`
}

// VerifyCredentialResponse is the verification verdict. Reason is empty when
// the credential is valid.
type VerifyCredentialResponse struct {
	IsValid    bool            `json:"isValid"`
	Reason     string          `json:"reason,omitempty"`
	Credential *Credential     `json:"credential,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	VerifiedAt time.Time       `json:"verifiedAt"`
}

// VerifyCredential handles POST /v1/credentials/verify
func (s *Server) VerifyCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req VerifyCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json body"})
		return
	}

	query := &ports.VerifyCredentialQuery{CredentialID: req.CredentialID}
	if req.ExpectedHash != "" {
		hash := common.HexToHash(req.ExpectedHash)
		query.ExpectedHash = &hash
	}

	outcome, err := s.verification.Verify(ctx, query)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	resp := VerifyCredentialResponse{
		IsValid:    outcome.Result.IsValid,
		Reason:     outcome.Result.Reason,
		Metadata:   outcome.Metadata,
		VerifiedAt: outcome.Result.VerifiedAt,
	}
	if outcome.Result.Credential != nil {
		cred := toCredential(outcome.Result.Credential)
		resp.Credential = &cred
	}

	writeJSON(w, http.StatusOK, resp)
}

// QuickVerifyResponse is the cheap verdict used for UI badges
type QuickVerifyResponse struct {
	IsValid   bool   `json:"isValid"`
	IssuerDID string `json:"issuerDID,omitempty"`
	Status    string `json:"status"`
}

// QuickVerify handles GET /v1/credentials/{id}/quick-verify
func (s *Server) QuickVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	credentialID := chi.URLParam(r, "id")

	result, err := s.verification.QuickVerify(ctx, credentialID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, QuickVerifyResponse{
		IsValid:   result.IsValid,
		IssuerDID: result.IssuerDID,
		Status:    result.Status.String(),
	})
}
