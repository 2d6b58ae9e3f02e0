package repository

import (
	"context"
	"errors"
	"fmt"

	"dreamchain/database"
	"dreamchain/models"
	"dreamchain/service"

	"github.com/jackc/pgx/v5"
)

const donationColumns = `
	id, dream_id, donor_id, from_wallet, amount, currency, tx_hash, created_at, updated_at`

// DonationRepository implements the DonationRepository interface
type DonationRepository struct {
	q queryable
}

// NewDonationRepository creates a new donation repository
func NewDonationRepository(db *database.DB) *DonationRepository {
	return &DonationRepository{q: db.Pool}
}

// newDonationRepositoryWithTx creates a new donation repository with a transaction
func newDonationRepositoryWithTx(tx queryable) *DonationRepository {
	return &DonationRepository{q: tx}
}

func scanDonation(row pgx.Row) (*models.Donation, error) {
	var donation models.Donation
	err := row.Scan(
		&donation.ID,
		&donation.DreamID,
		&donation.DonorID,
		&donation.FromWallet,
		&donation.Amount,
		&donation.Currency,
		&donation.TxHash,
		&donation.CreatedAt,
		&donation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *DonationRepository) queryOne(ctx context.Context, query string, args ...any) (*models.Donation, error) {
	donation, err := scanDonation(r.q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return donation, err
}

func (r *DonationRepository) queryMany(ctx context.Context, query string, args ...any) ([]*models.Donation, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	donations := make([]*models.Donation, 0)
	for rows.Next() {
		donation, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan donation: %w", err)
		}
		donations = append(donations, donation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating donations: %w", err)
	}
	return donations, nil
}

// GetByID retrieves a donation by ID
func (r *DonationRepository) GetByID(ctx context.Context, id int64) (*models.Donation, error) {
	donation, err := r.queryOne(ctx, `SELECT `+donationColumns+` FROM donations WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get donation %d: %w", id, err)
	}
	return donation, nil
}

// GetByTxHash retrieves a donation by its transaction hash
func (r *DonationRepository) GetByTxHash(ctx context.Context, txHash string) (*models.Donation, error) {
	donation, err := r.queryOne(ctx, `SELECT `+donationColumns+` FROM donations WHERE tx_hash = $1`, txHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get donation by tx hash %s: %w", txHash, err)
	}
	return donation, nil
}

// Create stores a donation and fills in its generated fields.
// Returns service.ErrDuplicateTxHash if the hash is already recorded.
func (r *DonationRepository) Create(ctx context.Context, donation *models.Donation) error {
	query := `
		INSERT INTO donations (dream_id, donor_id, from_wallet, amount, currency, tx_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		donation.DreamID,
		donation.DonorID,
		donation.FromWallet,
		donation.Amount,
		donation.Currency,
		donation.TxHash,
	).Scan(&donation.ID, &donation.CreatedAt, &donation.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "donations_tx_hash_key") {
			return service.ErrDuplicateTxHash
		}
		return fmt.Errorf("failed to create donation for dream %d: %w", donation.DreamID, err)
	}
	return nil
}

// List returns donations newest first
func (r *DonationRepository) List(ctx context.Context, skip, take int) ([]*models.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations ORDER BY created_at DESC, id DESC OFFSET $1 LIMIT $2`

	donations, err := r.queryMany(ctx, query, skip, take)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}
	return donations, nil
}

// GetByDream returns all donations to a dream, newest first
func (r *DonationRepository) GetByDream(ctx context.Context, dreamID int64) ([]*models.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE dream_id = $1 ORDER BY created_at DESC, id DESC`

	donations, err := r.queryMany(ctx, query, dreamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get donations for dream %d: %w", dreamID, err)
	}
	return donations, nil
}

// GetByWallet returns all donations sent from a wallet, newest first
func (r *DonationRepository) GetByWallet(ctx context.Context, walletAddress string) ([]*models.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE from_wallet = $1 ORDER BY created_at DESC, id DESC`

	donations, err := r.queryMany(ctx, query, walletAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to get donations for wallet %s: %w", walletAddress, err)
	}
	return donations, nil
}

// GetDonorIDsByDream returns the distinct donor IDs of a dream
func (r *DonationRepository) GetDonorIDsByDream(ctx context.Context, dreamID int64) ([]int64, error) {
	query := `
		SELECT DISTINCT donor_id
		FROM donations
		WHERE dream_id = $1 AND donor_id IS NOT NULL
		ORDER BY donor_id
	`

	rows, err := r.q.Query(ctx, query, dreamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query donors of dream %d: %w", dreamID, err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to collect donors of dream %d: %w", dreamID, err)
	}
	return ids, nil
}

// CountByWallet returns the number of donations sent from a wallet
func (r *DonationRepository) CountByWallet(ctx context.Context, walletAddress string) (int64, error) {
	var count int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM donations WHERE from_wallet = $1`, walletAddress).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count donations for wallet %s: %w", walletAddress, err)
	}
	return count, nil
}
