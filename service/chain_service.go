package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dreamchain/blockchain"
	"dreamchain/models"

	"github.com/shopspring/decimal"
)

// chainService implements the ChainService interface
type chainService struct {
	reader ChainReader
}

// NewChainService creates a chain service. A nil reader makes every lookup
// return ErrUnavailable.
func NewChainService(reader ChainReader) ChainService {
	return &chainService{reader: reader}
}

// VerifyTransaction looks up a transaction receipt on chain
func (s *chainService) VerifyTransaction(ctx context.Context, txHash string) (*models.TransactionInfo, error) {
	if s.reader == nil {
		return nil, fmt.Errorf("%w: no chain RPC configured", ErrUnavailable)
	}

	txHash = strings.TrimSpace(txHash)
	if txHash == "" {
		return nil, fmt.Errorf("%w: transaction hash is required", ErrInvalidInput)
	}

	info, err := s.reader.TransactionInfo(ctx, txHash)
	if err != nil {
		if errors.Is(err, blockchain.ErrTransactionNotFound) {
			return nil, fmt.Errorf("%w: transaction %s", ErrNotFound, txHash)
		}
		return nil, fmt.Errorf("failed to verify transaction: %w", err)
	}
	return info, nil
}

// Balance returns the native balance of an address in ether
func (s *chainService) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	if s.reader == nil {
		return decimal.Zero, fmt.Errorf("%w: no chain RPC configured", ErrUnavailable)
	}
	if !blockchain.IsEVMAddress(address) {
		return decimal.Zero, fmt.Errorf("%w: %q is not an EVM address", ErrInvalidInput, address)
	}

	balance, err := s.reader.BalanceOf(ctx, blockchain.NormalizeAddress(address))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}
