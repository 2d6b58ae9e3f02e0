package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DreamStatus represents the funding state of a dream
type DreamStatus string

const (
	DreamStatusActive    DreamStatus = "ACTIVE"
	DreamStatusCompleted DreamStatus = "COMPLETED"
)

// DefaultDreamGoal is used when a dream is created without an explicit goal
var DefaultDreamGoal = decimal.NewFromInt(100)

// Dream represents a funding campaign owned by a user
type Dream struct {
	ID             int64           `db:"id" json:"id"`
	UserID         int64           `db:"user_id" json:"userId"`
	Title          string          `db:"title" json:"title"`
	Description    string          `db:"description" json:"description"`
	ImageURL       *string         `db:"image_url" json:"imageUrl"`
	Category       *string         `db:"category" json:"category"`
	Goal           decimal.Decimal `db:"goal" json:"goal"`
	TotalDonations decimal.Decimal `db:"total_donations" json:"totalDonations"`
	Rating         int64           `db:"rating" json:"rating"`
	Status         DreamStatus     `db:"status" json:"status"`
	IsWithdrawn    bool            `db:"is_withdrawn" json:"isWithdrawn"`
	DonationCount  int64           `db:"-" json:"donationCount"`
	CreatedAt      time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updatedAt"`
}

// IsCompleted reports whether the dream has reached its terminal state
func (d *Dream) IsCompleted() bool {
	return d.Status == DreamStatusCompleted
}

// GoalReached reports whether the given running total meets the dream's goal
func (d *Dream) GoalReached(total decimal.Decimal) bool {
	return total.GreaterThanOrEqual(d.Goal)
}

// NewDream holds the caller-supplied fields for a dream. ID is set when the
// client reserved one through the next-id endpoint; nil lets the database
// assign it. A nil Goal means DefaultDreamGoal.
type NewDream struct {
	ID          *int64
	UserID      int64
	Title       string
	Description string
	ImageURL    *string
	Goal        *decimal.Decimal
	Category    *string
}

// DreamTotals is the dream state returned after a donation is applied
type DreamTotals struct {
	TotalDonations decimal.Decimal
	Rating         int64
}
