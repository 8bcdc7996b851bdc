package gateways

import (
	"context"
	"crypto/ecdsa"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"

	"github.com/veridlabs/id-node/internal/core/domain"
	"github.com/veridlabs/id-node/internal/core/ports"
	"github.com/veridlabs/id-node/pkg/blockchain/eth"
)

// Ledger executes the registry and verifier operations against the deployed
// contracts. Transactions are signed with the relayer key, the contracts
// enforce their own access rules on top of the signatures carried in the
// payloads.
type Ledger struct {
	client  *eth.Client
	relayer *ecdsa.PrivateKey

	didRegistry  contractRef
	credRegistry contractRef
	verifier     contractRef
}

type contractRef struct {
	address common.Address
	abi     abi.ABI
}

// Addresses holds the deployed contract addresses.
type Addresses struct {
	DIDRegistry        common.Address
	CredentialRegistry common.Address
	CredentialVerifier common.Address
}

// NewLedger returns a contract backed implementation of ports.Ledger.
func NewLedger(client *eth.Client, addresses Addresses, relayer *ecdsa.PrivateKey) (*Ledger, error) {
	didABI, err := abi.JSON(strings.NewReader(didRegistryABI))
	if err != nil {
		return nil, errors.Wrap(err, "parsing did registry abi")
	}
	credABI, err := abi.JSON(strings.NewReader(credentialRegistryABI))
	if err != nil {
		return nil, errors.Wrap(err, "parsing credential registry abi")
	}
	verifierABI, err := abi.JSON(strings.NewReader(credentialVerifierABI))
	if err != nil {
		return nil, errors.Wrap(err, "parsing credential verifier abi")
	}

	return &Ledger{
		client:       client,
		relayer:      relayer,
		didRegistry:  contractRef{address: addresses.DIDRegistry, abi: didABI},
		credRegistry: contractRef{address: addresses.CredentialRegistry, abi: credABI},
		verifier:     contractRef{address: addresses.CredentialVerifier, abi: verifierABI},
	}, nil
}

// LatestBlock returns the current chain head number.
func (l *Ledger) LatestBlock(ctx context.Context) (uint64, error) {
	block, err := l.client.CurrentBlock(ctx)
	if err != nil {
		return 0, err
	}
	return block.Uint64(), nil
}

// call performs a read only contract call decoding the outputs into results.
func (l *Ledger) call(ctx context.Context, ref contractRef, results *[]interface{}, method string, args ...interface{}) error {
	err := l.client.Call(func(c *ethclient.Client) error {
		contract := bind.NewBoundContract(ref.address, ref.abi, c, c, c)
		return contract.Call(&bind.CallOpts{Context: ctx}, results, method, args...)
	})
	return mapRevert(err)
}

// transact submits a state changing contract call and waits for its receipt.
func (l *Ledger) transact(ctx context.Context, ref contractRef, method string, args ...interface{}) (*domain.TxReceipt, error) {
	tx, err := l.client.CallAuth(ctx, 0, l.relayer, func(c *ethclient.Client, auth *bind.TransactOpts) (*types.Transaction, error) {
		contract := bind.NewBoundContract(ref.address, ref.abi, c, c, c)
		return contract.Transact(auth, method, args...)
	})
	if err != nil {
		return nil, mapRevert(err)
	}

	receipt, err := l.client.WaitTransactionReceiptByID(ctx, tx.Hash().Hex())
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, eth.ErrReceiptStatusFailed
	}

	header, err := l.client.HeaderByNumber(ctx, receipt.BlockNumber)
	if err != nil {
		return nil, err
	}

	return &domain.TxReceipt{
		TxID:        tx.Hash().Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		Timestamp:   time.Unix(int64(header.Time), 0).UTC(),
	}, nil
}

var revertSentinels = []struct {
	needle string
	err    error
}{
	{"did already exists", ports.ErrDIDAlreadyExists},
	{"did does not exist", ports.ErrDIDNotFound},
	{"did is not active", ports.ErrDIDInactive},
	{"credential already exists", ports.ErrCredentialAlreadyExists},
	{"credential does not exist", ports.ErrCredentialNotFound},
	{"already revoked", ports.ErrCredentialAlreadyRevoked},
	{"not the controller", ports.ErrNotController},
	{"only the issuer", ports.ErrNotController},
	{"invalid signature", domain.ErrInvalidSignature},
}

// mapRevert translates contract revert reasons into the registry sentinels so
// callers see the same errors on both ledger backends.
func mapRevert(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	for _, s := range revertSentinels {
		if strings.Contains(msg, s.needle) {
			return errors.Wrap(s.err, "ledger revert")
		}
	}
	return err
}
