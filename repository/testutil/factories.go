package testutil

import (
	"context"
	"fmt"
	"testing"

	"dreamchain/database"
	"dreamchain/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// WalletAddress returns a deterministic checksum-free test wallet for n
func WalletAddress(n int) string {
	return fmt.Sprintf("0x%040x", n)
}

// InsertUser stores a user with zeroed totals and returns its ID
func InsertUser(t *testing.T, db *database.DB, walletAddress string) int64 {
	t.Helper()

	var id int64
	err := db.QueryRow(context.Background(),
		`INSERT INTO users (wallet_address) VALUES ($1) RETURNING id`,
		walletAddress,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// InsertDream stores an active dream for a creator and returns its ID
func InsertDream(t *testing.T, db *database.DB, creatorID int64, goal, totalDonations string) int64 {
	t.Helper()

	var id int64
	err := db.QueryRow(context.Background(),
		`INSERT INTO dreams (user_id, title, goal, total_donations) VALUES ($1, $2, $3, $4) RETURNING id`,
		creatorID,
		fmt.Sprintf("Dream of user %d", creatorID),
		decimal.RequireFromString(goal),
		decimal.RequireFromString(totalDonations),
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// NewTestDream builds dream creation input with default values
func NewTestDream(creatorID int64, title string) *models.NewDream {
	goal := models.DefaultDreamGoal
	return &models.NewDream{
		UserID:      creatorID,
		Title:       title,
		Description: "A test dream",
		Goal:        &goal,
	}
}

// NewTestDonation builds an unsaved donation
func NewTestDonation(dreamID int64, donorID *int64, wallet, amount, txHash string) *models.Donation {
	return &models.Donation{
		DreamID:    dreamID,
		DonorID:    donorID,
		FromWallet: wallet,
		Amount:     decimal.RequireFromString(amount),
		Currency:   models.DefaultCurrency,
		TxHash:     txHash,
	}
}
