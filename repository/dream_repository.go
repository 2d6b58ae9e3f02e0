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

const dreamColumns = `
	d.id, d.user_id, d.title, d.description, d.image_url, d.category, d.goal,
	d.total_donations, d.rating, d.status, d.is_withdrawn, d.created_at, d.updated_at`

// dreamSelect reads dreams together with their donation count
const dreamSelect = `
	SELECT ` + dreamColumns + `,
		(SELECT COUNT(*) FROM donations dn WHERE dn.dream_id = d.id) AS donation_count
	FROM dreams d`

// DreamRepository implements the DreamRepository interface
type DreamRepository struct {
	q queryable
}

// NewDreamRepository creates a new dream repository
func NewDreamRepository(db *database.DB) *DreamRepository {
	return &DreamRepository{q: db.Pool}
}

// newDreamRepositoryWithTx creates a new dream repository with a transaction
func newDreamRepositoryWithTx(tx queryable) *DreamRepository {
	return &DreamRepository{q: tx}
}

func scanDream(row pgx.Row, withCount bool) (*models.Dream, error) {
	var dream models.Dream
	dest := []any{
		&dream.ID,
		&dream.UserID,
		&dream.Title,
		&dream.Description,
		&dream.ImageURL,
		&dream.Category,
		&dream.Goal,
		&dream.TotalDonations,
		&dream.Rating,
		&dream.Status,
		&dream.IsWithdrawn,
		&dream.CreatedAt,
		&dream.UpdatedAt,
	}
	if withCount {
		dest = append(dest, &dream.DonationCount)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &dream, nil
}

func (r *DreamRepository) queryOne(ctx context.Context, withCount bool, query string, args ...any) (*models.Dream, error) {
	dream, err := scanDream(r.q.QueryRow(ctx, query, args...), withCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return dream, err
}

func (r *DreamRepository) queryMany(ctx context.Context, query string, args ...any) ([]*models.Dream, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dreams := make([]*models.Dream, 0)
	for rows.Next() {
		dream, err := scanDream(rows, true)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dream: %w", err)
		}
		dreams = append(dreams, dream)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dreams: %w", err)
	}
	return dreams, nil
}

// GetByID retrieves a dream by ID
func (r *DreamRepository) GetByID(ctx context.Context, id int64) (*models.Dream, error) {
	dream, err := r.queryOne(ctx, true, dreamSelect+` WHERE d.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get dream %d: %w", id, err)
	}
	return dream, nil
}

// GetByIDForUpdate retrieves a dream by ID and locks its row until the transaction ends
func (r *DreamRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Dream, error) {
	query := `SELECT ` + dreamColumns + ` FROM dreams d WHERE d.id = $1 FOR UPDATE`

	dream, err := r.queryOne(ctx, false, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock dream %d: %w", id, err)
	}
	return dream, nil
}

// Create creates a new active dream. An explicit ID is inserted as given and
// the ID sequence is moved past it so later generated IDs cannot collide.
func (r *DreamRepository) Create(ctx context.Context, dream *models.NewDream) (*models.Dream, error) {
	goal := models.DefaultDreamGoal
	if dream.Goal != nil {
		goal = *dream.Goal
	}

	// COALESCE falls back to the column default when no ID was supplied
	query := `
		INSERT INTO dreams AS d (id, user_id, title, description, image_url, category, goal)
		VALUES (COALESCE($1, nextval(pg_get_serial_sequence('dreams', 'id'))), $2, $3, $4, $5, $6, $7)
		RETURNING ` + dreamColumns

	created, err := r.queryOne(ctx, false, query,
		dream.ID,
		dream.UserID,
		dream.Title,
		dream.Description,
		dream.ImageURL,
		dream.Category,
		goal,
	)
	if err != nil {
		if isUniqueViolation(err, "dreams_pkey") {
			return nil, service.ErrDuplicateDreamID
		}
		return nil, fmt.Errorf("failed to create dream for user %d: %w", dream.UserID, err)
	}

	if dream.ID != nil {
		if err := r.advanceIDSequence(ctx, *dream.ID); err != nil {
			return nil, err
		}
	}
	return created, nil
}

func (r *DreamRepository) advanceIDSequence(ctx context.Context, id int64) error {
	query := `
		SELECT setval(seq, GREATEST($1, COALESCE(pg_sequence_last_value(seq), 0)))
		FROM (SELECT pg_get_serial_sequence('dreams', 'id')::regclass AS seq) s`

	if _, err := r.q.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to advance dream id sequence past %d: %w", id, err)
	}
	return nil
}

// ApplyDonation adds the amount and the stars to the dream, returning the new totals
func (r *DreamRepository) ApplyDonation(ctx context.Context, id int64, amount decimal.Decimal, stars int64) (*models.DreamTotals, error) {
	query := `
		UPDATE dreams
		SET total_donations = total_donations + $2,
		    rating = rating + $3
		WHERE id = $1
		RETURNING total_donations, rating
	`

	var totals models.DreamTotals
	err := r.q.QueryRow(ctx, query, id, amount, stars).Scan(&totals.TotalDonations, &totals.Rating)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("dream with ID %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply donation to dream %d: %w", id, err)
	}
	return &totals, nil
}

// MarkCompleted transitions an active dream to completed.
// Returns false if the dream was not active.
func (r *DreamRepository) MarkCompleted(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE dreams
		SET status = $2
		WHERE id = $1 AND status = $3
	`

	result, err := r.q.Exec(ctx, query, id, models.DreamStatusCompleted, models.DreamStatusActive)
	if err != nil {
		return false, fmt.Errorf("failed to complete dream %d: %w", id, err)
	}
	return result.RowsAffected() == 1, nil
}

// MarkWithdrawn flags the dream's funds as withdrawn
func (r *DreamRepository) MarkWithdrawn(ctx context.Context, id int64) (*models.Dream, error) {
	query := `
		UPDATE dreams AS d
		SET is_withdrawn = TRUE
		WHERE d.id = $1
		RETURNING ` + dreamColumns

	dream, err := r.queryOne(ctx, false, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to withdraw dream %d: %w", id, err)
	}
	if dream == nil {
		return nil, fmt.Errorf("dream with ID %d not found", id)
	}
	return dream, nil
}

// List returns dreams newest first
func (r *DreamRepository) List(ctx context.Context, skip, take int) ([]*models.Dream, error) {
	query := dreamSelect + ` ORDER BY d.created_at DESC, d.id DESC OFFSET $1 LIMIT $2`

	dreams, err := r.queryMany(ctx, query, skip, take)
	if err != nil {
		return nil, fmt.Errorf("failed to list dreams: %w", err)
	}
	return dreams, nil
}

// GetTop returns dreams ordered by rating then total donations
func (r *DreamRepository) GetTop(ctx context.Context, limit int) ([]*models.Dream, error) {
	query := dreamSelect + ` ORDER BY d.rating DESC, d.total_donations DESC, d.id LIMIT $1`

	dreams, err := r.queryMany(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top dreams: %w", err)
	}
	return dreams, nil
}

// GetCompleted returns completed dreams, most recently updated first
func (r *DreamRepository) GetCompleted(ctx context.Context, limit int) ([]*models.Dream, error) {
	query := dreamSelect + ` WHERE d.status = $1 ORDER BY d.updated_at DESC, d.id DESC LIMIT $2`

	dreams, err := r.queryMany(ctx, query, models.DreamStatusCompleted, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed dreams: %w", err)
	}
	return dreams, nil
}

// GetRandom returns a random dream or nil if none exist
func (r *DreamRepository) GetRandom(ctx context.Context) (*models.Dream, error) {
	dream, err := r.queryOne(ctx, true, dreamSelect+` ORDER BY random() LIMIT 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to get random dream: %w", err)
	}
	return dream, nil
}

// GetByUser returns the dreams created by a user
func (r *DreamRepository) GetByUser(ctx context.Context, userID int64) ([]*models.Dream, error) {
	query := dreamSelect + ` WHERE d.user_id = $1 ORDER BY d.created_at DESC, d.id DESC`

	dreams, err := r.queryMany(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get dreams for user %d: %w", userID, err)
	}
	return dreams, nil
}

// GetByCreatorWallet returns dreams created by a wallet, optionally filtered by status
func (r *DreamRepository) GetByCreatorWallet(ctx context.Context, walletAddress string, status *models.DreamStatus) ([]*models.Dream, error) {
	query := dreamSelect + `
		JOIN users u ON u.id = d.user_id
		WHERE u.wallet_address = $1`
	args := []any{walletAddress}

	if status != nil {
		query += ` AND d.status = $2 ORDER BY d.updated_at DESC, d.id DESC`
		args = append(args, *status)
	} else {
		query += ` ORDER BY d.created_at DESC, d.id DESC`
	}

	dreams, err := r.queryMany(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get dreams for wallet %s: %w", walletAddress, err)
	}
	return dreams, nil
}

// NextID reserves the next value of the dream ID sequence
func (r *DreamRepository) NextID(ctx context.Context) (int64, error) {
	var id int64
	err := r.q.QueryRow(ctx, `SELECT nextval(pg_get_serial_sequence('dreams', 'id'))`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to reserve dream ID: %w", err)
	}
	return id, nil
}

// GetStats returns platform-wide funding figures
func (r *DreamRepository) GetStats(ctx context.Context) (*models.PlatformStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(total_donations), 0),
			(SELECT COUNT(DISTINCT from_wallet) FROM donations),
			COUNT(*) FILTER (WHERE status = $1)
		FROM dreams
	`

	var stats models.PlatformStats
	err := r.q.QueryRow(ctx, query, models.DreamStatusCompleted).Scan(
		&stats.TotalDreams,
		&stats.TotalRaised,
		&stats.ActiveDonors,
		&stats.CompletedDreams,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get platform stats: %w", err)
	}
	return &stats, nil
}
