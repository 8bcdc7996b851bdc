package api

import (
	"encoding/json"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"github.com/veridlabs/id-node/internal/core/ports"
)

// CreateIdentityRequest is the POST /v1/identities payload
type CreateIdentityRequest struct {
	DID             string `json:"did"`
	Controller      string `json:"controller"`
	PublicKey       string `json:"publicKey"`
	ServiceEndpoint string `json:"serviceEndpoint"`
}

// CreateIdentityResponse returns the anchored DID and its commit proof
type CreateIdentityResponse struct {
	DID     string    `json:"did"`
	Receipt TxReceipt `json:"receipt"`
}

// CreateIdentity handles POST /v1/identities
func (s *Server) CreateIdentity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateIdentityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json body"})
		return
	}
	if !common.IsHexAddress(req.Controller) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "controller must be a hex address"})
		return
	}

	receipt, err := s.identityService.Create(ctx, &ports.CreateDIDRequest{
		DID:             req.DID,
		Controller:      common.HexToAddress(req.Controller),
		PublicKey:       req.PublicKey,
		ServiceEndpoint: req.ServiceEndpoint,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateIdentityResponse{
		DID:     req.DID,
		Receipt: toTxReceipt(receipt),
	})
}

// GetIdentity handles GET /v1/identities/{did}
func (s *Server) GetIdentity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	did := chi.URLParam(r, "did")

	doc, err := s.identityService.Get(ctx, did)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDIDDocument(doc))
}
