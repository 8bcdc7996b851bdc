package gateways

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/veridlabs/id-node/internal/core/domain"
	"github.com/veridlabs/id-node/internal/core/ports"
)

// didDocumentRecord mirrors the DIDDocument tuple returned by the contract.
type didDocumentRecord struct {
	Did             string
	Controller      common.Address
	PublicKey       string
	ServiceEndpoint string
	Created         *big.Int
	Updated         *big.Int
	Active          bool
}

// CreateDID anchors a new DID document. The contract records the transaction
// sender as controller, so the relayer account must be the controller named
// in the request.
func (l *Ledger) CreateDID(ctx context.Context, req *ports.CreateDIDRequest) (*domain.TxReceipt, error) {
	if err := domain.ValidateDID(req.DID); err != nil {
		return nil, err
	}
	return l.transact(ctx, l.didRegistry, "createDID", req.DID, req.PublicKey, req.ServiceEndpoint)
}

// GetDIDDocument resolves a DID from the registry contract.
func (l *Ledger) GetDIDDocument(ctx context.Context, did string) (*domain.DIDDocument, error) {
	var out []interface{}
	if err := l.call(ctx, l.didRegistry, &out, "getDIDDocument", did); err != nil {
		return nil, err
	}

	record := *abi.ConvertType(out[0], new(didDocumentRecord)).(*didDocumentRecord)
	if record.Did == "" || record.Created.Sign() == 0 {
		return nil, errors.Wrap(ports.ErrDIDNotFound, did)
	}

	return &domain.DIDDocument{
		DID:             record.Did,
		Controller:      record.Controller,
		PublicKey:       record.PublicKey,
		ServiceEndpoint: record.ServiceEndpoint,
		Created:         time.Unix(record.Created.Int64(), 0).UTC(),
		Updated:         time.Unix(record.Updated.Int64(), 0).UTC(),
		Active:          record.Active,
	}, nil
}

// VerifyController asks the registry whether identity controls an active did.
func (l *Ledger) VerifyController(ctx context.Context, did string, identity common.Address) (bool, error) {
	var out []interface{}
	if err := l.call(ctx, l.didRegistry, &out, "verifyDIDController", did, identity); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}
