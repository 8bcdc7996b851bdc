package eth

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/veridlabs/id-node/internal/log"
)

const (
	// Eq is for "equal" result of comparison
	Eq = 0
	// Gt is for "greater" than result of comparison
	Gt = 1
	// Lt is for "less than" result of comparison
	Lt = -1

	gasPriceIncrement               = 10
	transactionUnderpricedIncrement = 30
)

var (
	// ErrPrivateKeyNil when private key is nil
	ErrPrivateKeyNil = errors.New("authorized calls can't be made with empty private key")
	// ErrReceiptStatusFailed when receiving a failed transaction
	ErrReceiptStatusFailed = errors.New("receipt status is failed")
	// ErrReceiptNotReceived when unable to retrieve a transaction
	ErrReceiptNotReceived = errors.New("receipt not available")
)

// Client is an ethereum client to call Smart Contract methods.
type Client struct {
	client *ethclient.Client
	Config *ClientConfig
}

// ClientConfig eth client config
type ClientConfig struct {
	ReceiptTimeout       time.Duration `json:"receipt_timeout"`
	DefaultGasLimit      int           `json:"default_gas_limit"`
	MinGasPrice          *big.Int      `json:"min_gas_price"`
	MaxGasPrice          *big.Int      `json:"max_gas_price"`
	RPCResponseTimeout   time.Duration `json:"rpc_response_time_out"`
	WaitReceiptCycleTime time.Duration `json:"wait_receipt_cycle_time_out"`
}

// NewClient creates a Client instance.
func NewClient(client *ethclient.Client, c *ClientConfig) *Client {
	return &Client{client: client, Config: c}
}

// BalanceAt retrieves the balance of an account
func (c *Client) BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error) {
	_ctx, cancel := context.WithTimeout(ctx, c.Config.RPCResponseTimeout)
	defer cancel()
	return c.client.BalanceAt(_ctx, addr, nil)
}

// Call performs a read only Smart Contract method call.
func (c *Client) Call(fn func(*ethclient.Client) error) error {
	return fn(c.client)
}

// CallAuth performs a Smart Contract method call that requires authorization.
// This call requires a valid account with Ether that can be spent during the
// call.
func (c *Client) CallAuth(ctx context.Context, gasLimit uint64, privateKey *ecdsa.PrivateKey, fn func(*ethclient.Client, *bind.TransactOpts) (*types.Transaction, error)) (*types.Transaction, error) {
	if privateKey == nil {
		return nil, ErrPrivateKeyNil
	}

	gasPrice, err := c.getGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gasPrice: %v", err)
	}
	log.Debug(ctx, "Transaction metadata", "gasPrice", gasPrice)

	cid, err := c.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chainID: %v", err)
	}

	auth, err := bind.NewKeyedTransactorWithChainID(privateKey, cid)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction signer: %v", err)
	}
	auth.Value = big.NewInt(0) // in wei
	if gasLimit == 0 {
		auth.GasLimit = uint64(c.Config.DefaultGasLimit) // in units
	} else {
		auth.GasLimit = gasLimit // in units
	}
	auth.GasPrice = gasPrice

	tx, err := fn(c.client, auth)
	if err != nil && strings.Contains(err.Error(), "transaction underpriced") {
		oldGasPrice := auth.GasPrice.Int64()
		auth.GasPrice = gasPrice.Mul(gasPrice, new(big.Int).SetInt64(transactionUnderpricedIncrement))
		log.Debug(ctx, "underpriced transaction has been resent",
			"old gasPrice", oldGasPrice,
			"new gasPrice", auth.GasPrice.Int64())
		tx, err = fn(c.client, auth)
	}
	if tx != nil {
		log.Debug(ctx, "Transaction", "tx", tx.Hash().Hex(), "nonce", tx.Nonce())
	}
	return tx, err
}

// CurrentBlock returns the current block number in the blockchain
func (c *Client) CurrentBlock(ctx context.Context) (*big.Int, error) {
	_ctx, cancel := context.WithTimeout(ctx, c.Config.RPCResponseTimeout)
	defer cancel()
	header, err := c.client.HeaderByNumber(_ctx, nil)
	if err != nil {
		return nil, err
	}
	return header.Number, nil
}

// ChainID get chain id.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	_ctx, cancel := context.WithTimeout(ctx, c.Config.RPCResponseTimeout)
	defer cancel()
	cid, err := c.client.ChainID(_ctx)
	if err != nil {
		return nil, err
	}
	return cid, nil
}

// HeaderByNumber get eth block header by block number
func (c *Client) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	_ctx, cancel := context.WithTimeout(ctx, c.Config.RPCResponseTimeout)
	defer cancel()
	header, err := c.client.HeaderByNumber(_ctx, number)
	if err != nil {
		return nil, err
	}
	return header, nil
}

// GetTransactionReceiptByID get tx receipt by tx id
func (c *Client) GetTransactionReceiptByID(ctx context.Context, txID string) (*types.Receipt, error) {
	_ctx, cancel := context.WithTimeout(ctx, c.Config.RPCResponseTimeout)
	defer cancel()
	receipt, err := c.client.TransactionReceipt(_ctx, common.HexToHash(txID))
	if err != nil {
		return nil, err
	}

	if receipt == nil {
		log.Debug(ctx, "Pending transaction", "tx", txID)
		return nil, ErrReceiptNotReceived
	}
	return receipt, nil
}

// WaitTransactionReceiptByID wait for transaction receipt
func (c *Client) WaitTransactionReceiptByID(ctx context.Context, txID string) (*types.Receipt, error) {
	return c.waitReceipt(ctx, common.HexToHash(txID), c.Config.ReceiptTimeout)
}

func (c *Client) waitReceipt(ctx context.Context, txID common.Hash, timeout time.Duration) (*types.Receipt, error) {
	var err error
	var receipt *types.Receipt

	log.Debug(ctx, "Waiting for receipt", "tx", txID.Hex())

	start := time.Now()
	for {
		receipt, err = c.client.TransactionReceipt(ctx, txID)
		if err != nil {
			log.Debug(ctx, "get transaction receipt", "err", err)
		}

		if receipt != nil || time.Since(start) >= timeout {
			break
		}

		time.Sleep(c.Config.WaitReceiptCycleTime)
	}

	if receipt == nil {
		log.Debug(ctx, "Pending transaction / Wait receipt timeout", "tx", txID.Hex())
		return receipt, ErrReceiptNotReceived
	}
	log.Debug(ctx, "Receipt received", "tx", txID.Hex())

	return receipt, err
}

// getGasPrice returns suggested gas price within configured bounds
func (c *Client) getGasPrice(ctx context.Context) (*big.Int, error) {
	gasPrice := new(big.Int)
	zero := big.NewInt(0)

	// if configured min gas price == max gas price and is not zero, then force this value
	if c.Config.MinGasPrice != nil && c.Config.MinGasPrice.Cmp(zero) == Gt &&
		c.Config.MaxGasPrice != nil && c.Config.MinGasPrice.Cmp(c.Config.MaxGasPrice) == Eq {
		return gasPrice.Set(c.Config.MaxGasPrice), nil
	}

	_ctx, cancel := context.WithTimeout(ctx, c.Config.RPCResponseTimeout)
	defer cancel()
	suggestedGasPrice, err := c.client.SuggestGasPrice(_ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get suggested gas price: %v", err)
	}

	// increase suggested gas price by 10% for better confirmation speed
	inc := new(big.Int).Set(suggestedGasPrice)
	inc.Div(inc, new(big.Int).SetUint64(gasPriceIncrement))
	suggestedGasPrice.Add(suggestedGasPrice, inc)

	gasPrice.Set(suggestedGasPrice)

	// correct value if estimated gas price is outside the configured bounds
	if c.Config.MinGasPrice != nil && c.Config.MinGasPrice.Cmp(zero) == Gt &&
		gasPrice.Cmp(c.Config.MinGasPrice) == Lt {
		gasPrice.Set(c.Config.MinGasPrice)
	}
	if c.Config.MaxGasPrice != nil && c.Config.MaxGasPrice.Cmp(zero) == Gt &&
		gasPrice.Cmp(c.Config.MaxGasPrice) == Gt {
		gasPrice.Set(c.Config.MaxGasPrice)
	}

	if gasPrice.Cmp(suggestedGasPrice) != Eq {
		log.Debug(ctx, "Transaction metadata",
			"suggested gas price", suggestedGasPrice,
			"corrected gas price", gasPrice)
	}

	return gasPrice, err
}
