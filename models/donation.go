package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency recorded when the caller omits one
const DefaultCurrency = "USDC"

// Donation is an immutable record of one on-chain transfer to a dream
type Donation struct {
	ID         int64           `db:"id" json:"id"`
	DreamID    int64           `db:"dream_id" json:"dreamId"`
	DonorID    *int64          `db:"donor_id" json:"donorId"`
	FromWallet string          `db:"from_wallet" json:"fromWallet"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	Currency   string          `db:"currency" json:"currency"`
	TxHash     string          `db:"tx_hash" json:"txHash"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updatedAt"`
}

// DonationRequest is a claimed blockchain donation as submitted by a caller
type DonationRequest struct {
	DreamID      string `json:"dreamId"`
	Amount       string `json:"amount"`
	TxHash       string `json:"txHash"`
	DonorAddress string `json:"donor"`
	Currency     string `json:"currency,omitempty"`
}

// DonationResult describes what recording a donation did
type DonationResult struct {
	Donation       *Donation
	Duplicate      bool
	ChancesGained  int64
	StarsAdded     int64
	DreamCompleted bool
}
