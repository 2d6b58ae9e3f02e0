package repository

import (
	"context"
	"errors"
	"fmt"

	"dreamchain/database"
	"dreamchain/models"
	"dreamchain/service"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const userColumns = `
	id, wallet_address, username, avatar, rating,
	total_donated, total_received, chances, created_at, updated_at`

// UserRepository implements the UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.WalletAddress,
		&user.Username,
		&user.Avatar,
		&user.Rating,
		&user.TotalDonated,
		&user.TotalReceived,
		&user.Chances,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) queryOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	user, err := scanUser(r.q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := r.queryOne(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

// GetByIDForUpdate retrieves a user by ID and locks the row until the
// surrounding transaction ends. Callers that derive totals from committed
// donations take this lock first so a concurrent donation is either fully
// visible or not yet started.
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`

	user, err := r.queryOne(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock user %d: %w", id, err)
	}
	return user, nil
}

// GetByWalletAddress retrieves a user by wallet address
func (r *UserRepository) GetByWalletAddress(ctx context.Context, walletAddress string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE wallet_address = $1`

	user, err := r.queryOne(ctx, query, walletAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by wallet %s: %w", walletAddress, err)
	}
	return user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, walletAddress string, username, avatar *string) (*models.User, error) {
	query := `
		INSERT INTO users (wallet_address, username, avatar)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, walletAddress, username, avatar))
	if err != nil {
		if isUniqueViolation(err, "users_wallet_address_key") {
			return nil, service.ErrDuplicateWallet
		}
		return nil, fmt.Errorf("failed to create user with wallet %s: %w", walletAddress, err)
	}
	return user, nil
}

// FindOrCreateForUpdate returns the user for a wallet, inserting it when absent.
// The row stays locked until the surrounding transaction ends.
func (r *UserRepository) FindOrCreateForUpdate(ctx context.Context, walletAddress string) (*models.User, bool, error) {
	insert := `
		INSERT INTO users (wallet_address, username)
		VALUES ($1, 'User-' || substr($1, 3, 6))
		ON CONFLICT (wallet_address) DO NOTHING
		RETURNING ` + userColumns

	user, err := r.queryOne(ctx, insert, walletAddress)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert user with wallet %s: %w", walletAddress, err)
	}
	if user != nil {
		return user, true, nil
	}

	// Row already existed
	selectQuery := `SELECT ` + userColumns + ` FROM users WHERE wallet_address = $1 FOR UPDATE`
	user, err = r.queryOne(ctx, selectQuery, walletAddress)
	if err != nil {
		return nil, false, fmt.Errorf("failed to lock user with wallet %s: %w", walletAddress, err)
	}
	if user == nil {
		return nil, false, fmt.Errorf("user with wallet %s vanished during lookup", walletAddress)
	}
	return user, false, nil
}

// IncrementDonationStats adds to total donated and chances atomically
func (r *UserRepository) IncrementDonationStats(ctx context.Context, id int64, amount decimal.Decimal, chances int64) error {
	query := `
		UPDATE users
		SET total_donated = total_donated + $2,
		    chances = chances + $3
		WHERE id = $1
	`

	result, err := r.q.Exec(ctx, query, id, amount, chances)
	if err != nil {
		return fmt.Errorf("failed to update donation stats for user %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user with ID %d not found", id)
	}
	return nil
}

// IncrementTotalReceived adds to total received atomically
func (r *UserRepository) IncrementTotalReceived(ctx context.Context, id int64, amount decimal.Decimal) error {
	query := `UPDATE users SET total_received = total_received + $2 WHERE id = $1`

	result, err := r.q.Exec(ctx, query, id, amount)
	if err != nil {
		return fmt.Errorf("failed to update total received for user %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user with ID %d not found", id)
	}
	return nil
}

// GetRatingInputs sums the user's donations and the totals of every dream they created
func (r *UserRepository) GetRatingInputs(ctx context.Context, id int64) (*models.RatingInputs, error) {
	query := `
		SELECT
			COALESCE((SELECT SUM(d.amount) FROM donations d WHERE d.donor_id = $1), 0),
			COALESCE((SELECT SUM(dr.total_donations) FROM dreams dr WHERE dr.user_id = $1), 0),
			(SELECT COUNT(*) FROM dreams dr WHERE dr.user_id = $1)
	`

	var inputs models.RatingInputs
	err := r.q.QueryRow(ctx, query, id).Scan(
		&inputs.TotalDonated,
		&inputs.TotalReceived,
		&inputs.DreamsCreated,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sum rating inputs for user %d: %w", id, err)
	}
	return &inputs, nil
}

// UpdateRating overwrites the rating and the derived totals
func (r *UserRepository) UpdateRating(ctx context.Context, id int64, rating int64, totalDonated, totalReceived decimal.Decimal) (*models.User, error) {
	query := `
		UPDATE users
		SET rating = $2, total_donated = $3, total_received = $4
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := r.queryOne(ctx, query, id, rating, totalDonated, totalReceived)
	if err != nil {
		return nil, fmt.Errorf("failed to update rating for user %d: %w", id, err)
	}
	if user == nil {
		return nil, fmt.Errorf("user with ID %d not found", id)
	}
	return user, nil
}

// UpdateUsername sets the username for a wallet, returning nil if no such user exists
func (r *UserRepository) UpdateUsername(ctx context.Context, walletAddress, username string) (*models.User, error) {
	query := `
		UPDATE users
		SET username = $2
		WHERE wallet_address = $1
		RETURNING ` + userColumns

	user, err := r.queryOne(ctx, query, walletAddress, username)
	if err != nil {
		return nil, fmt.Errorf("failed to update username for wallet %s: %w", walletAddress, err)
	}
	return user, nil
}

// GetAll returns all users, biggest donors first
func (r *UserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY total_donated DESC, id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// GetAllIDs returns the IDs of every user in ascending order
func (r *UserRepository) GetAllIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query user IDs: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to collect user IDs: %w", err)
	}
	return ids, nil
}
