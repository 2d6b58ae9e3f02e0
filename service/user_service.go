package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dreamchain/blockchain"
	"dreamchain/events"
	"dreamchain/models"

	log "github.com/sirupsen/logrus"
)

// userService implements the UserService interface
type userService struct {
	uowFactory UnitOfWorkFactory
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory) UserService {
	return &userService{
		uowFactory: uowFactory,
	}
}

// defaultUsername derives a display name from a wallet address
func defaultUsername(walletAddress string) string {
	short := walletAddress
	if len(short) > 8 {
		short = short[2:8]
	}
	return "User-" + short
}

// CreateUser registers a wallet and computes its initial rating
func (s *userService) CreateUser(ctx context.Context, walletAddress string, username, avatar *string) (*models.User, error) {
	wallet := blockchain.NormalizeAddress(walletAddress)
	if wallet == "" {
		return nil, fmt.Errorf("%w: wallet address is required", ErrInvalidInput)
	}

	if username == nil || strings.TrimSpace(*username) == "" {
		name := defaultUsername(wallet)
		username = &name
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().Create(ctx, wallet, username, avatar)
	if err != nil {
		if errors.Is(err, ErrDuplicateWallet) {
			return nil, fmt.Errorf("%w: user with wallet %s already exists", ErrConflict, wallet)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	refreshed, err := refreshRating(ctx, uow, user.ID)
	if err != nil {
		return nil, err
	}
	if refreshed != nil {
		user = refreshed
	}

	uow.EventBus().Publish(events.UserCreatedEvent{
		UserID:        user.ID,
		WalletAddress: user.WalletAddress,
		Source:        "registration",
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID": user.ID,
		"wallet": user.WalletAddress,
	}).Info("Created user")

	return user, nil
}

// GetUser returns a user by ID
func (s *userService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return user, nil
}

// GetUserByWallet returns the user owning a wallet address
func (s *userService) GetUserByWallet(ctx context.Context, walletAddress string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wallet := blockchain.NormalizeAddress(walletAddress)
	user, err := uow.UserRepository().GetByWalletAddress(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by wallet: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user with wallet %s", ErrNotFound, wallet)
	}
	return user, nil
}

// ListUsers returns every user, biggest donors first
func (s *userService) ListUsers(ctx context.Context) ([]*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	users, err := uow.UserRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateUsername changes the display name of a wallet's user
func (s *userService) UpdateUsername(ctx context.Context, walletAddress, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wallet := blockchain.NormalizeAddress(walletAddress)
	user, err := uow.UserRepository().UpdateUsername(ctx, wallet, username)
	if err != nil {
		return nil, fmt.Errorf("failed to update username: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user with wallet %s", ErrNotFound, wallet)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}

// CreatedDreams returns dreams created by a wallet
func (s *userService) CreatedDreams(ctx context.Context, walletAddress string) ([]*models.Dream, error) {
	return s.dreamsByWallet(ctx, walletAddress, nil)
}

// CompletedDreams returns completed dreams created by a wallet
func (s *userService) CompletedDreams(ctx context.Context, walletAddress string) ([]*models.Dream, error) {
	status := models.DreamStatusCompleted
	return s.dreamsByWallet(ctx, walletAddress, &status)
}

func (s *userService) dreamsByWallet(ctx context.Context, walletAddress string, status *models.DreamStatus) ([]*models.Dream, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	dreams, err := uow.DreamRepository().GetByCreatorWallet(ctx, blockchain.NormalizeAddress(walletAddress), status)
	if err != nil {
		return nil, fmt.Errorf("failed to get dreams for wallet: %w", err)
	}
	return dreams, nil
}

// DonatedDonations returns the donations sent from a wallet
func (s *userService) DonatedDonations(ctx context.Context, walletAddress string) ([]*models.Donation, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	donations, err := uow.DonationRepository().GetByWallet(ctx, blockchain.NormalizeAddress(walletAddress))
	if err != nil {
		return nil, fmt.Errorf("failed to get donations for wallet: %w", err)
	}
	return donations, nil
}

// RefreshRating recomputes a single user's rating in its own transaction
func (s *userService) RefreshRating(ctx context.Context, userID int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := refreshRating(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}

// RefreshAllRatings sweeps every user. A failure for one user is logged and
// does not stop the sweep.
func (s *userService) RefreshAllRatings(ctx context.Context) (int, error) {
	ids, err := s.listUserIDs(ctx)
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}

		user, err := s.RefreshRating(ctx, id)
		if err != nil {
			log.WithFields(log.Fields{
				"userID": id,
				"error":  err,
			}).Error("Failed to refresh user rating")
			continue
		}
		if user != nil {
			refreshed++
		}
	}

	log.WithFields(log.Fields{
		"users":     len(ids),
		"refreshed": refreshed,
	}).Info("Rating reconciliation completed")

	return refreshed, nil
}

func (s *userService) listUserIDs(ctx context.Context) ([]int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ids, err := uow.UserRepository().GetAllIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list user IDs: %w", err)
	}
	return ids, nil
}
