package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a wallet holder who donates to or creates dreams
type User struct {
	ID            int64           `db:"id" json:"id"`
	WalletAddress string          `db:"wallet_address" json:"walletAddress"`
	Username      *string         `db:"username" json:"username"`
	Avatar        *string         `db:"avatar" json:"avatar"`
	Rating        int64           `db:"rating" json:"rating"`
	TotalDonated  decimal.Decimal `db:"total_donated" json:"totalDonated"`
	TotalReceived decimal.Decimal `db:"total_received" json:"totalReceived"`
	Chances       int64           `db:"chances" json:"chances"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

// RatingInputs is the full history a user's rating is derived from
type RatingInputs struct {
	TotalDonated  decimal.Decimal // sum of own donation amounts
	TotalReceived decimal.Decimal // sum of total donations across own dreams
	DreamsCreated int64
}

// LoginRequest is a wallet sign-in attempt
type LoginRequest struct {
	WalletAddress string `json:"walletAddress"`
	Message       string `json:"message,omitempty"`
	Signature     string `json:"signature,omitempty"`
}

// LoginResult carries the authenticated user and their access token
type LoginResult struct {
	User        *User  `json:"user"`
	AccessToken string `json:"accessToken"`
}

// TokenClaims identifies the caller behind a verified access token
type TokenClaims struct {
	UserID        int64  `json:"sub"`
	WalletAddress string `json:"walletAddress"`
}
