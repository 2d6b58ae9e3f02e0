package service

import (
	"context"
	"time"

	"dreamchain/events"
	"dreamchain/models"

	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByIDForUpdate retrieves a user by ID and holds a row lock on it for
	// the rest of the transaction
	GetByIDForUpdate(ctx context.Context, id int64) (*models.User, error)

	// GetByWalletAddress retrieves a user by wallet address
	GetByWalletAddress(ctx context.Context, walletAddress string) (*models.User, error)

	// Create creates a new user with zero rating, totals and chances
	Create(ctx context.Context, walletAddress string, username, avatar *string) (*models.User, error)

	// FindOrCreateForUpdate returns the user for a wallet, creating it if absent,
	// and holds a row lock on it for the rest of the transaction
	FindOrCreateForUpdate(ctx context.Context, walletAddress string) (user *models.User, created bool, err error)

	// IncrementDonationStats adds to total donated and chances atomically
	IncrementDonationStats(ctx context.Context, id int64, amount decimal.Decimal, chances int64) error

	// IncrementTotalReceived adds to total received atomically
	IncrementTotalReceived(ctx context.Context, id int64, amount decimal.Decimal) error

	// GetRatingInputs sums the user's full donation and dream history
	GetRatingInputs(ctx context.Context, id int64) (*models.RatingInputs, error)

	// UpdateRating overwrites the rating and the derived totals
	UpdateRating(ctx context.Context, id int64, rating int64, totalDonated, totalReceived decimal.Decimal) (*models.User, error)

	// UpdateUsername sets the username for a wallet
	UpdateUsername(ctx context.Context, walletAddress, username string) (*models.User, error)

	// GetAll returns all users ordered by total donated
	GetAll(ctx context.Context) ([]*models.User, error)

	// GetAllIDs returns the IDs of every user
	GetAllIDs(ctx context.Context) ([]int64, error)
}

// DreamRepository defines the interface for dream data access
type DreamRepository interface {
	// GetByID retrieves a dream by ID
	GetByID(ctx context.Context, id int64) (*models.Dream, error)

	// GetByIDForUpdate retrieves a dream by ID and locks its row for the transaction
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Dream, error)

	// Create creates a new active dream
	Create(ctx context.Context, dream *models.NewDream) (*models.Dream, error)

	// ApplyDonation adds the amount to total donations and the stars to the rating,
	// returning the post-increment values
	ApplyDonation(ctx context.Context, id int64, amount decimal.Decimal, stars int64) (*models.DreamTotals, error)

	// MarkCompleted transitions an active dream to completed; false if it was not active
	MarkCompleted(ctx context.Context, id int64) (bool, error)

	// MarkWithdrawn flags the dream's funds as withdrawn
	MarkWithdrawn(ctx context.Context, id int64) (*models.Dream, error)

	// List returns dreams newest first
	List(ctx context.Context, skip, take int) ([]*models.Dream, error)

	// GetTop returns dreams ordered by rating then total donations
	GetTop(ctx context.Context, limit int) ([]*models.Dream, error)

	// GetCompleted returns completed dreams, most recently updated first
	GetCompleted(ctx context.Context, limit int) ([]*models.Dream, error)

	// GetRandom returns a random dream or nil if none exist
	GetRandom(ctx context.Context) (*models.Dream, error)

	// GetByUser returns the dreams created by a user
	GetByUser(ctx context.Context, userID int64) ([]*models.Dream, error)

	// GetByCreatorWallet returns dreams created by a wallet, optionally filtered by status
	GetByCreatorWallet(ctx context.Context, walletAddress string, status *models.DreamStatus) ([]*models.Dream, error)

	// NextID reserves the next dream ID from the sequence
	NextID(ctx context.Context) (int64, error)

	// GetStats returns platform-wide funding figures
	GetStats(ctx context.Context) (*models.PlatformStats, error)
}

// DonationRepository defines the interface for donation data access
type DonationRepository interface {
	// GetByID retrieves a donation by ID
	GetByID(ctx context.Context, id int64) (*models.Donation, error)

	// GetByTxHash retrieves a donation by its transaction hash
	GetByTxHash(ctx context.Context, txHash string) (*models.Donation, error)

	// Create stores a donation, returning ErrDuplicateTxHash if the hash exists
	Create(ctx context.Context, donation *models.Donation) error

	// List returns donations newest first
	List(ctx context.Context, skip, take int) ([]*models.Donation, error)

	// GetByDream returns all donations to a dream
	GetByDream(ctx context.Context, dreamID int64) ([]*models.Donation, error)

	// GetByWallet returns all donations sent from a wallet
	GetByWallet(ctx context.Context, walletAddress string) ([]*models.Donation, error)

	// GetDonorIDsByDream returns the distinct donor IDs of a dream
	GetDonorIDsByDream(ctx context.Context, dreamID int64) ([]int64, error)

	// CountByWallet returns the number of donations sent from a wallet
	CountByWallet(ctx context.Context, walletAddress string) (int64, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// ChainReader is a read-only view of the blockchain
type ChainReader interface {
	// TransactionInfo returns the receipt summary for a transaction hash
	TransactionInfo(ctx context.Context, txHash string) (*models.TransactionInfo, error)

	// BalanceOf returns the native balance of an address in ether
	BalanceOf(ctx context.Context, address string) (decimal.Decimal, error)
}

// StatsCache caches platform statistics. Generation changes on every
// Invalidate; Set skips the write when it no longer matches.
type StatsCache interface {
	Get(ctx context.Context) (*models.PlatformStats, bool)
	Generation(ctx context.Context) (int64, error)
	Set(ctx context.Context, stats *models.PlatformStats, generation int64) (bool, error)
	Invalidate(ctx context.Context) error
}

// DonationObserver receives outcome notifications from the donation recorder
type DonationObserver interface {
	ObserveRecorded(currency string, elapsed time.Duration)
	ObserveDuplicate()
	ObserveRejected(reason string)
}

// DonationService records blockchain donations and serves donation queries
type DonationService interface {
	// RecordDonation runs the full recording pipeline for a claimed donation
	RecordDonation(ctx context.Context, req models.DonationRequest) (*models.DonationResult, error)

	GetDonation(ctx context.Context, id int64) (*models.Donation, error)
	ListDonations(ctx context.Context, skip, take int) ([]*models.Donation, error)
	DonationsByDream(ctx context.Context, dreamID int64) ([]*models.Donation, error)
	DonationsByWallet(ctx context.Context, walletAddress string) ([]*models.Donation, error)
	DonationByTxHash(ctx context.Context, txHash string) (*models.Donation, error)
}

// UserService defines the interface for user operations
type UserService interface {
	// CreateUser registers a wallet explicitly
	CreateUser(ctx context.Context, walletAddress string, username, avatar *string) (*models.User, error)

	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByWallet(ctx context.Context, walletAddress string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUsername(ctx context.Context, walletAddress, username string) (*models.User, error)

	CreatedDreams(ctx context.Context, walletAddress string) ([]*models.Dream, error)
	DonatedDonations(ctx context.Context, walletAddress string) ([]*models.Donation, error)
	CompletedDreams(ctx context.Context, walletAddress string) ([]*models.Dream, error)

	// RefreshRating recomputes a user's rating from full history; nil if the user is gone
	RefreshRating(ctx context.Context, userID int64) (*models.User, error)

	// RefreshAllRatings recomputes every user's rating, returning how many succeeded
	RefreshAllRatings(ctx context.Context) (int, error)
}

// DreamService defines the interface for dream operations
type DreamService interface {
	CreateDream(ctx context.Context, dream models.NewDream) (*models.Dream, error)
	GetDream(ctx context.Context, id int64) (*models.Dream, error)
	ListDreams(ctx context.Context, skip, take int) ([]*models.Dream, error)
	TopDreams(ctx context.Context, limit int) ([]*models.Dream, error)
	NewDreams(ctx context.Context, limit int) ([]*models.Dream, error)
	CompletedDreams(ctx context.Context, limit int) ([]*models.Dream, error)
	RandomDream(ctx context.Context) (*models.Dream, error)
	DreamsByUser(ctx context.Context, userID int64) ([]*models.Dream, error)
	NextDreamID(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*models.PlatformStats, error)

	// WithdrawFunds flags a dream withdrawn and refreshes creator and donor ratings
	WithdrawFunds(ctx context.Context, dreamID int64) (*models.Dream, error)

	// CanCreateDream reports whether a wallet has donated at least once
	CanCreateDream(ctx context.Context, walletAddress string) (bool, error)
}

// AuthService issues and verifies session tokens for wallets
type AuthService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error)
	VerifyToken(token string) (*models.TokenClaims, error)
}

// ChainService exposes read-only chain lookups
type ChainService interface {
	VerifyTransaction(ctx context.Context, txHash string) (*models.TransactionInfo, error)
	Balance(ctx context.Context, address string) (decimal.Decimal, error)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	DreamRepository() DreamRepository
	DonationRepository() DonationRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
