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

// credentialRecord mirrors the Credential tuple returned by the contract.
type credentialRecord struct {
	Id             string
	IssuerDID      string
	SubjectDID     string
	CredentialType string
	CredentialHash string
	MetadataURI    string
	IssuanceDate   *big.Int
	ExpirationDate *big.Int
	Status         uint8
	Signature      []byte
}

// IssueCredential submits a credential issuance transaction. The issuer
// signature travels in the payload and is checked by the contract.
func (l *Ledger) IssueCredential(ctx context.Context, req *ports.IssueRequest) (*domain.TxReceipt, error) {
	expiration := big.NewInt(0)
	if !req.ExpirationDate.IsZero() {
		expiration = big.NewInt(req.ExpirationDate.Unix())
	}

	return l.transact(ctx, l.credRegistry, "issueCredential",
		req.CredentialID,
		req.IssuerDID,
		req.SubjectDID,
		req.CredentialType,
		req.CredentialHash.Hex(),
		req.MetadataURI,
		expiration,
		req.Signature,
	)
}

// RevokeCredential revokes a credential. The controller check runs before the
// transaction is relayed so a caller that is not the issuer controller never
// spends gas.
func (l *Ledger) RevokeCredential(ctx context.Context, credentialID string, caller common.Address) (*domain.TxReceipt, error) {
	cred, err := l.GetCredential(ctx, credentialID)
	if err != nil {
		return nil, err
	}
	if cred.Status == domain.StatusRevoked {
		return nil, errors.Wrap(ports.ErrCredentialAlreadyRevoked, credentialID)
	}

	ok, err := l.VerifyController(ctx, cred.IssuerDID, caller)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrap(ports.ErrNotController, caller.Hex())
	}

	return l.transact(ctx, l.credRegistry, "revokeCredential", credentialID)
}

// GetCredential returns the stored credential record.
func (l *Ledger) GetCredential(ctx context.Context, credentialID string) (*domain.Credential, error) {
	var out []interface{}
	if err := l.call(ctx, l.credRegistry, &out, "verifyCredential", credentialID); err != nil {
		return nil, err
	}

	record := *abi.ConvertType(out[1], new(credentialRecord)).(*credentialRecord)
	if record.Id == "" {
		return nil, errors.Wrap(ports.ErrCredentialNotFound, credentialID)
	}

	return toDomainCredential(record), nil
}

// GetCredentialsBySubject returns credential ids in issuance order.
func (l *Ledger) GetCredentialsBySubject(ctx context.Context, subjectDID string) ([]string, error) {
	var out []interface{}
	if err := l.call(ctx, l.credRegistry, &out, "getCredentialsBySubject", subjectDID); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]string)).(*[]string), nil
}

func toDomainCredential(record credentialRecord) *domain.Credential {
	cred := &domain.Credential{
		ID:             record.Id,
		IssuerDID:      record.IssuerDID,
		SubjectDID:     record.SubjectDID,
		CredentialType: record.CredentialType,
		CredentialHash: common.HexToHash(record.CredentialHash),
		MetadataURI:    record.MetadataURI,
		IssuanceDate:   time.Unix(record.IssuanceDate.Int64(), 0).UTC(),
		Status:         domain.CredentialStatus(record.Status),
		Signature:      record.Signature,
	}
	if record.ExpirationDate.Sign() > 0 {
		cred.ExpirationDate = time.Unix(record.ExpirationDate.Int64(), 0).UTC()
	}
	return cred
}
