package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"dreamchain/models"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// ErrTransactionNotFound is returned when the node has no receipt for a hash
var ErrTransactionNotFound = errors.New("transaction not found")

const weiDecimals = 18

// Client is a read-only view of an EVM chain
type Client struct {
	rpcURL string
	client *ethclient.Client
}

// NewClient dials the JSON-RPC endpoint
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}

	log.WithField("rpcURL", rpcURL).Info("Connected to chain RPC")
	return &Client{rpcURL: rpcURL, client: client}, nil
}

// Close closes the underlying RPC connection
func (c *Client) Close() {
	c.client.Close()
}

// TransactionInfo fetches the receipt and sender of a transaction
func (c *Client) TransactionInfo(ctx context.Context, txHash string) (*models.TransactionInfo, error) {
	hash := common.HexToHash(txHash)

	receipt, err := c.client.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt for %s: %w", txHash, err)
	}

	tx, _, err := c.client.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", txHash, err)
	}

	from, err := c.client.TransactionSender(ctx, tx, receipt.BlockHash, receipt.TransactionIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sender of %s: %w", txHash, err)
	}

	var blockNumber uint64
	if receipt.BlockNumber != nil {
		blockNumber = receipt.BlockNumber.Uint64()
	}

	return &models.TransactionInfo{
		TxHash:      receipt.TxHash.Hex(),
		From:        from.Hex(),
		Value:       valueOrZero(tx.Value()).String(),
		BlockNumber: blockNumber,
		GasUsed:     receipt.GasUsed,
		Success:     receipt.Status == types.ReceiptStatusSuccessful,
	}, nil
}

// BalanceOf returns the native balance of an address in ether
func (c *Client) BalanceOf(ctx context.Context, address string) (decimal.Decimal, error) {
	if !IsEVMAddress(address) {
		return decimal.Zero, fmt.Errorf("invalid address %q", address)
	}

	wei, err := c.client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get balance for %s: %w", address, err)
	}

	return WeiToEther(wei), nil
}

// WeiToEther converts a wei amount to ether
func WeiToEther(wei *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(valueOrZero(wei), -weiDecimals)
}

func valueOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
