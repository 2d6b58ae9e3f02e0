package repository

import (
	"context"
	"testing"

	"dreamchain/repository/testutil"
	"dreamchain/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDonationRepository_CreateAndLookup(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewDonationRepository(testDB.DB)
	ctx := context.Background()

	creatorID := testutil.InsertUser(t, testDB.DB, testutil.WalletAddress(1))
	donorID := testutil.InsertUser(t, testDB.DB, testutil.WalletAddress(2))
	dreamID := testutil.InsertDream(t, testDB.DB, creatorID, "100", "0")

	donation := testutil.NewTestDonation(dreamID, &donorID, testutil.WalletAddress(2), "0.000001", "0xhash1")
	require.NoError(t, repo.Create(ctx, donation))
	assert.NotZero(t, donation.ID)
	assert.False(t, donation.CreatedAt.IsZero())

	t.Run("by tx hash preserves precision", func(t *testing.T) {
		found, err := repo.GetByTxHash(ctx, "0xhash1")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, donation.ID, found.ID)
		assert.True(t, found.Amount.Equal(decimal.RequireFromString("0.000001")))
		require.NotNil(t, found.DonorID)
		assert.Equal(t, donorID, *found.DonorID)
	})

	t.Run("unknown tx hash", func(t *testing.T) {
		found, err := repo.GetByTxHash(ctx, "0xnope")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("duplicate tx hash", func(t *testing.T) {
		dup := testutil.NewTestDonation(dreamID, &donorID, testutil.WalletAddress(2), "5", "0xhash1")
		err := repo.Create(ctx, dup)
		assert.ErrorIs(t, err, service.ErrDuplicateTxHash)
	})
}

func TestDonationRepository_Queries(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewDonationRepository(testDB.DB)
	ctx := context.Background()

	creatorID := testutil.InsertUser(t, testDB.DB, testutil.WalletAddress(1))
	donorA := testutil.InsertUser(t, testDB.DB, testutil.WalletAddress(2))
	donorB := testutil.InsertUser(t, testDB.DB, testutil.WalletAddress(3))
	dreamID := testutil.InsertDream(t, testDB.DB, creatorID, "100", "0")
	otherDream := testutil.InsertDream(t, testDB.DB, creatorID, "100", "0")

	require.NoError(t, repo.Create(ctx, testutil.NewTestDonation(dreamID, &donorA, testutil.WalletAddress(2), "1", "0x1")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestDonation(dreamID, &donorA, testutil.WalletAddress(2), "2", "0x2")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestDonation(dreamID, &donorB, testutil.WalletAddress(3), "3", "0x3")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestDonation(otherDream, nil, testutil.WalletAddress(4), "4", "0x4")))

	t.Run("by dream", func(t *testing.T) {
		donations, err := repo.GetByDream(ctx, dreamID)
		require.NoError(t, err)
		assert.Len(t, donations, 3)
	})

	t.Run("by wallet", func(t *testing.T) {
		donations, err := repo.GetByWallet(ctx, testutil.WalletAddress(2))
		require.NoError(t, err)
		require.Len(t, donations, 2)
		assert.Equal(t, "0x2", donations[0].TxHash)

		count, err := repo.CountByWallet(ctx, testutil.WalletAddress(2))
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		count, err = repo.CountByWallet(ctx, testutil.WalletAddress(9))
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("distinct donors skip anonymous rows", func(t *testing.T) {
		ids, err := repo.GetDonorIDsByDream(ctx, dreamID)
		require.NoError(t, err)
		assert.Equal(t, []int64{donorA, donorB}, ids)

		ids, err = repo.GetDonorIDsByDream(ctx, otherDream)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("list pages", func(t *testing.T) {
		donations, err := repo.List(ctx, 0, 2)
		require.NoError(t, err)
		require.Len(t, donations, 2)
		assert.Equal(t, "0x4", donations[0].TxHash)
	})
}
