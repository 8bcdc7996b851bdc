package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/veridlabs/id-node/internal/core/domain"
	"github.com/veridlabs/id-node/internal/core/ports"
	"github.com/veridlabs/id-node/internal/core/services"
	"github.com/veridlabs/id-node/internal/log"
)

// writeError maps service and registry errors to http status codes so both
// ledger backends surface the same API behavior.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidDID),
		errors.Is(err, domain.ErrInvalidSignature),
		errors.Is(err, services.ErrEmptyCredentialData),
		errors.Is(err, services.ErrEmptyCredentialID):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	case errors.Is(err, ports.ErrDIDNotFound),
		errors.Is(err, ports.ErrCredentialNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case errors.Is(err, ports.ErrDIDAlreadyExists),
		errors.Is(err, ports.ErrCredentialAlreadyExists),
		errors.Is(err, ports.ErrCredentialAlreadyRevoked),
		errors.Is(err, ports.ErrDIDInactive):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})

	case errors.Is(err, ports.ErrNotController):
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: err.Error()})

	case errors.Is(err, services.ErrContentStoreUnavailable),
		errors.Is(err, services.ErrLedgerUnavailable):
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: err.Error()})

	default:
		log.Error(ctx, "unexpected api error", "err", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
