package events

import (
	"github.com/shopspring/decimal"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeDonationRecorded EventType = "donation_recorded"
	EventTypeChancesAwarded   EventType = "chances_awarded"
	EventTypeDreamCompleted   EventType = "dream_completed"
	EventTypeRatingUpdated    EventType = "rating_updated"
	EventTypeUserCreated      EventType = "user_created"
	EventTypeDreamCreated     EventType = "dream_created"
	EventTypeDreamWithdrawn   EventType = "dream_withdrawn"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// DonationRecordedEvent is emitted once per newly stored donation
type DonationRecordedEvent struct {
	DonationID int64           `json:"donationId"`
	DreamID    int64           `json:"dreamId"`
	DonorID    int64           `json:"donorId"`
	FromWallet string          `json:"fromWallet"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	TxHash     string          `json:"txHash"`
	StarsAdded int64           `json:"starsAdded"`
}

func (e DonationRecordedEvent) Type() EventType {
	return EventTypeDonationRecorded
}

// ChancesAwardedEvent is emitted when a donation crosses a reward threshold
type ChancesAwardedEvent struct {
	UserID         int64           `json:"userId"`
	WalletAddress  string          `json:"walletAddress"`
	PreviousTotal  decimal.Decimal `json:"previousTotal"`
	NewTotal       decimal.Decimal `json:"newTotal"`
	ChancesAwarded int64           `json:"chancesAwarded"`
	DonationTxHash string          `json:"donationTxHash"`
}

func (e ChancesAwardedEvent) Type() EventType {
	return EventTypeChancesAwarded
}

// DreamCompletedEvent is emitted when a dream reaches its goal
type DreamCompletedEvent struct {
	DreamID        int64           `json:"dreamId"`
	CreatorID      int64           `json:"creatorId"`
	Goal           decimal.Decimal `json:"goal"`
	TotalDonations decimal.Decimal `json:"totalDonations"`
}

func (e DreamCompletedEvent) Type() EventType {
	return EventTypeDreamCompleted
}

// RatingUpdatedEvent is emitted when a user's rating is recomputed
type RatingUpdatedEvent struct {
	UserID    int64 `json:"userId"`
	OldRating int64 `json:"oldRating"`
	NewRating int64 `json:"newRating"`
}

func (e RatingUpdatedEvent) Type() EventType {
	return EventTypeRatingUpdated
}

// UserCreatedEvent represents a new user creation
type UserCreatedEvent struct {
	UserID        int64  `json:"userId"`
	WalletAddress string `json:"walletAddress"`
	Source        string `json:"source"`
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// DreamCreatedEvent represents a newly opened dream
type DreamCreatedEvent struct {
	DreamID   int64           `json:"dreamId"`
	CreatorID int64           `json:"creatorId"`
	Goal      decimal.Decimal `json:"goal"`
}

func (e DreamCreatedEvent) Type() EventType {
	return EventTypeDreamCreated
}

// DreamWithdrawnEvent represents a creator withdrawing a dream's funds
type DreamWithdrawnEvent struct {
	DreamID   int64 `json:"dreamId"`
	CreatorID int64 `json:"creatorId"`
}

func (e DreamWithdrawnEvent) Type() EventType {
	return EventTypeDreamWithdrawn
}

// AllEventTypes lists every event type emitted by the recorder and its collaborators
func AllEventTypes() []EventType {
	return []EventType{
		EventTypeDonationRecorded,
		EventTypeChancesAwarded,
		EventTypeDreamCompleted,
		EventTypeRatingUpdated,
		EventTypeUserCreated,
		EventTypeDreamCreated,
		EventTypeDreamWithdrawn,
	}
}
