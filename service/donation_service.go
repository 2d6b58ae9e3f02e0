package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"dreamchain/blockchain"
	"dreamchain/events"
	"dreamchain/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// donationInput is a validated donation request
type donationInput struct {
	DreamID      int64
	Amount       decimal.Decimal
	TxHash       string
	DonorAddress string
	Currency     string
}

type donationService struct {
	uowFactory      UnitOfWorkFactory
	observer        DonationObserver
	defaultCurrency string
}

// NewDonationService creates a new donation service
func NewDonationService(uowFactory UnitOfWorkFactory, observer DonationObserver, defaultCurrency string) DonationService {
	if observer == nil {
		observer = noopObserver{}
	}
	if defaultCurrency == "" {
		defaultCurrency = models.DefaultCurrency
	}
	return &donationService{
		uowFactory:      uowFactory,
		observer:        observer,
		defaultCurrency: defaultCurrency,
	}
}

// RecordDonation ingests a claimed blockchain donation. A transaction hash that
// is already recorded returns the stored donation without further mutation.
func (s *donationService) RecordDonation(ctx context.Context, req models.DonationRequest) (*models.DonationResult, error) {
	start := time.Now()

	input, err := parseDonationRequest(req, s.defaultCurrency)
	if err != nil {
		s.observer.ObserveRejected("invalid_input")
		return nil, err
	}

	logger := log.WithFields(log.Fields{
		"dreamID": input.DreamID,
		"amount":  input.Amount.String(),
		"donor":   input.DonorAddress,
		"txHash":  input.TxHash,
	})

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	existing, err := uow.DonationRepository().GetByTxHash(ctx, input.TxHash)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing donation: %w", err)
	}
	if existing != nil {
		logger.Info("Donation already recorded, skipping duplicate")
		s.observer.ObserveDuplicate()
		return &models.DonationResult{Donation: existing, Duplicate: true}, nil
	}

	dream, err := s.checkEligibility(ctx, uow, input.DreamID)
	if err != nil {
		logger.WithError(err).Warn("Rejected donation")
		return nil, err
	}

	donor, created, err := uow.UserRepository().FindOrCreateForUpdate(ctx, input.DonorAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to find or create donor: %w", err)
	}
	if created {
		logger.WithField("userID", donor.ID).Info("Created donor user")
		uow.EventBus().Publish(events.UserCreatedEvent{
			UserID:        donor.ID,
			WalletAddress: donor.WalletAddress,
			Source:        "donation",
		})
	}

	// Captured before any write to the donor's totals
	previousTotal := donor.TotalDonated

	donorID := donor.ID
	donation := &models.Donation{
		DreamID:    dream.ID,
		DonorID:    &donorID,
		FromWallet: input.DonorAddress,
		Amount:     input.Amount,
		Currency:   input.Currency,
		TxHash:     input.TxHash,
	}
	if err := uow.DonationRepository().Create(ctx, donation); err != nil {
		if errors.Is(err, ErrDuplicateTxHash) {
			// A concurrent submission of the same hash won the insert
			uow.Rollback()
			return s.loadDuplicate(ctx, input.TxHash)
		}
		return nil, fmt.Errorf("failed to create donation: %w", err)
	}
	logger = logger.WithField("donationID", donation.ID)

	stars := StarsForAmount(input.Amount)
	totals, err := uow.DreamRepository().ApplyDonation(ctx, dream.ID, input.Amount, stars)
	if err != nil {
		return nil, fmt.Errorf("failed to update dream totals: %w", err)
	}

	chances := ChancesGained(previousTotal, input.Amount)
	if err := uow.UserRepository().IncrementDonationStats(ctx, donor.ID, input.Amount, chances); err != nil {
		return nil, fmt.Errorf("failed to update donor statistics: %w", err)
	}

	logger.WithFields(log.Fields{
		"previousTotal": previousTotal.String(),
		"newTotal":      previousTotal.Add(input.Amount).String(),
		"chancesGained": chances,
		"starsAdded":    stars,
		"dreamTotal":    totals.TotalDonations.String(),
	}).Debug("Applied donation to dream and donor")

	if _, err := refreshRating(ctx, uow, donor.ID); err != nil {
		return nil, fmt.Errorf("failed to refresh donor rating: %w", err)
	}

	completed := false
	if dream.GoalReached(totals.TotalDonations) {
		completed, err = s.completeDream(ctx, uow, dream, totals)
		if err != nil {
			return nil, err
		}
		if completed {
			logger.WithField("goal", dream.Goal.String()).Info("Dream goal reached")
		}
	}

	uow.EventBus().Publish(events.DonationRecordedEvent{
		DonationID: donation.ID,
		DreamID:    dream.ID,
		DonorID:    donor.ID,
		FromWallet: donation.FromWallet,
		Amount:     donation.Amount,
		Currency:   donation.Currency,
		TxHash:     donation.TxHash,
		StarsAdded: stars,
	})
	if chances > 0 {
		uow.EventBus().Publish(events.ChancesAwardedEvent{
			UserID:         donor.ID,
			WalletAddress:  donor.WalletAddress,
			PreviousTotal:  previousTotal,
			NewTotal:       previousTotal.Add(input.Amount),
			ChancesAwarded: chances,
			DonationTxHash: donation.TxHash,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.observer.ObserveRecorded(donation.Currency, time.Since(start))
	logger.Info("Donation recorded")

	return &models.DonationResult{
		Donation:       donation,
		ChancesGained:  chances,
		StarsAdded:     stars,
		DreamCompleted: completed,
	}, nil
}

// checkEligibility loads and locks the dream, rejecting missing or completed dreams
func (s *donationService) checkEligibility(ctx context.Context, uow UnitOfWork, dreamID int64) (*models.Dream, error) {
	dream, err := uow.DreamRepository().GetByIDForUpdate(ctx, dreamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get dream: %w", err)
	}
	if dream == nil {
		s.observer.ObserveRejected("not_found")
		return nil, fmt.Errorf("%w: dream with ID %d does not exist", ErrNotFound, dreamID)
	}
	if dream.IsCompleted() {
		s.observer.ObserveRejected("invalid_state")
		return nil, fmt.Errorf("%w: dream with ID %d is already completed", ErrInvalidState, dreamID)
	}
	return dream, nil
}

// completeDream transitions the dream and credits its creator with the goal amount.
// Returns false if the dream was already completed by someone else.
func (s *donationService) completeDream(ctx context.Context, uow UnitOfWork, dream *models.Dream, totals *models.DreamTotals) (bool, error) {
	transitioned, err := uow.DreamRepository().MarkCompleted(ctx, dream.ID)
	if err != nil {
		return false, fmt.Errorf("failed to mark dream completed: %w", err)
	}
	if !transitioned {
		return false, nil
	}

	if err := uow.UserRepository().IncrementTotalReceived(ctx, dream.UserID, dream.Goal); err != nil {
		return false, fmt.Errorf("failed to update creator statistics: %w", err)
	}

	if _, err := refreshRating(ctx, uow, dream.UserID); err != nil {
		return false, fmt.Errorf("failed to refresh creator rating: %w", err)
	}

	uow.EventBus().Publish(events.DreamCompletedEvent{
		DreamID:        dream.ID,
		CreatorID:      dream.UserID,
		Goal:           dream.Goal,
		TotalDonations: totals.TotalDonations,
	})

	return true, nil
}

// loadDuplicate returns the donation stored by a concurrent submission
func (s *donationService) loadDuplicate(ctx context.Context, txHash string) (*models.DonationResult, error) {
	existing, err := s.DonationByTxHash(ctx, txHash)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("donation %s reported duplicate but was not found", txHash)
	}

	log.WithField("txHash", txHash).Info("Donation recorded concurrently, returning stored record")
	s.observer.ObserveDuplicate()
	return &models.DonationResult{Donation: existing, Duplicate: true}, nil
}

// parseDonationRequest validates and normalizes the caller-supplied fields
func parseDonationRequest(req models.DonationRequest, defaultCurrency string) (*donationInput, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount %q must be a positive number", ErrInvalidInput, req.Amount)
	}

	dreamID, err := strconv.ParseInt(strings.TrimSpace(req.DreamID), 10, 64)
	if err != nil || dreamID <= 0 {
		return nil, fmt.Errorf("%w: dream ID %q must be a positive integer", ErrInvalidInput, req.DreamID)
	}

	txHash := strings.TrimSpace(req.TxHash)
	if txHash == "" {
		return nil, fmt.Errorf("%w: transaction hash is required", ErrInvalidInput)
	}

	donor := blockchain.NormalizeAddress(req.DonorAddress)
	if donor == "" {
		return nil, fmt.Errorf("%w: donor address is required", ErrInvalidInput)
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	return &donationInput{
		DreamID:      dreamID,
		Amount:       amount,
		TxHash:       txHash,
		DonorAddress: donor,
		Currency:     currency,
	}, nil
}

// GetDonation returns a donation by ID
func (s *donationService) GetDonation(ctx context.Context, id int64) (*models.Donation, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	donation, err := uow.DonationRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get donation: %w", err)
	}
	if donation == nil {
		return nil, fmt.Errorf("%w: donation %d", ErrNotFound, id)
	}
	return donation, nil
}

// ListDonations returns donations newest first
func (s *donationService) ListDonations(ctx context.Context, skip, take int) ([]*models.Donation, error) {
	skip, take = normalizePage(skip, take)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	donations, err := uow.DonationRepository().List(ctx, skip, take)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}
	return donations, nil
}

// DonationsByDream returns all donations made to a dream
func (s *donationService) DonationsByDream(ctx context.Context, dreamID int64) ([]*models.Donation, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	donations, err := uow.DonationRepository().GetByDream(ctx, dreamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get donations for dream %d: %w", dreamID, err)
	}
	return donations, nil
}

// DonationsByWallet returns all donations sent from a wallet
func (s *donationService) DonationsByWallet(ctx context.Context, walletAddress string) ([]*models.Donation, error) {
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

// DonationByTxHash returns the donation recorded for a transaction hash, or nil
func (s *donationService) DonationByTxHash(ctx context.Context, txHash string) (*models.Donation, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	donation, err := uow.DonationRepository().GetByTxHash(ctx, strings.TrimSpace(txHash))
	if err != nil {
		return nil, fmt.Errorf("failed to get donation by tx hash: %w", err)
	}
	return donation, nil
}

type noopObserver struct{}

func (noopObserver) ObserveRecorded(string, time.Duration) {}
func (noopObserver) ObserveDuplicate()                     {}
func (noopObserver) ObserveRejected(string)                {}
