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

// dreamService implements the DreamService interface
type dreamService struct {
	uowFactory UnitOfWorkFactory
	statsCache StatsCache
}

// NewDreamService creates a new dream service. statsCache may be nil.
func NewDreamService(uowFactory UnitOfWorkFactory, statsCache StatsCache) DreamService {
	return &dreamService{
		uowFactory: uowFactory,
		statsCache: statsCache,
	}
}

// CreateDream opens a new funding campaign for an existing user
func (s *dreamService) CreateDream(ctx context.Context, dream models.NewDream) (*models.Dream, error) {
	dream.Title = strings.TrimSpace(dream.Title)
	if dream.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if dream.Goal == nil {
		goal := models.DefaultDreamGoal
		dream.Goal = &goal
	}
	if !dream.Goal.IsPositive() {
		return nil, fmt.Errorf("%w: goal must be positive", ErrInvalidInput)
	}
	if dream.ID != nil && *dream.ID <= 0 {
		return nil, fmt.Errorf("%w: dream id must be positive", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	creator, err := uow.UserRepository().GetByIDForUpdate(ctx, dream.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get creator: %w", err)
	}
	if creator == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, dream.UserID)
	}

	created, err := uow.DreamRepository().Create(ctx, &dream)
	if err != nil {
		if errors.Is(err, ErrDuplicateDreamID) {
			return nil, fmt.Errorf("%w: dream %d already exists", ErrConflict, *dream.ID)
		}
		return nil, fmt.Errorf("failed to create dream: %w", err)
	}

	// Dream count feeds the creator's rating
	if _, err := refreshRating(ctx, uow, creator.ID); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.DreamCreatedEvent{
		DreamID:   created.ID,
		CreatorID: creator.ID,
		Goal:      created.Goal,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"dreamID":   created.ID,
		"creatorID": creator.ID,
		"goal":      created.Goal.String(),
	}).Info("Created dream")

	return created, nil
}

// GetDream returns a dream by ID
func (s *dreamService) GetDream(ctx context.Context, id int64) (*models.Dream, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	dream, err := uow.DreamRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get dream: %w", err)
	}
	if dream == nil {
		return nil, fmt.Errorf("%w: dream %d", ErrNotFound, id)
	}
	return dream, nil
}

// ListDreams returns a page of dreams, newest first
func (s *dreamService) ListDreams(ctx context.Context, skip, take int) ([]*models.Dream, error) {
	skip, take = normalizePage(skip, take)
	return s.query(ctx, "list dreams", func(repo DreamRepository) ([]*models.Dream, error) {
		return repo.List(ctx, skip, take)
	})
}

// TopDreams returns the highest rated dreams
func (s *dreamService) TopDreams(ctx context.Context, limit int) ([]*models.Dream, error) {
	limit = normalizeLimit(limit)
	return s.query(ctx, "get top dreams", func(repo DreamRepository) ([]*models.Dream, error) {
		return repo.GetTop(ctx, limit)
	})
}

// NewDreams returns the most recently created dreams
func (s *dreamService) NewDreams(ctx context.Context, limit int) ([]*models.Dream, error) {
	limit = normalizeLimit(limit)
	return s.query(ctx, "get new dreams", func(repo DreamRepository) ([]*models.Dream, error) {
		return repo.List(ctx, 0, limit)
	})
}

// CompletedDreams returns the most recently completed dreams
func (s *dreamService) CompletedDreams(ctx context.Context, limit int) ([]*models.Dream, error) {
	limit = normalizeLimit(limit)
	return s.query(ctx, "get completed dreams", func(repo DreamRepository) ([]*models.Dream, error) {
		return repo.GetCompleted(ctx, limit)
	})
}

// DreamsByUser returns the dreams created by a user
func (s *dreamService) DreamsByUser(ctx context.Context, userID int64) ([]*models.Dream, error) {
	return s.query(ctx, "get dreams by user", func(repo DreamRepository) ([]*models.Dream, error) {
		return repo.GetByUser(ctx, userID)
	})
}

func (s *dreamService) query(ctx context.Context, op string, fn func(DreamRepository) ([]*models.Dream, error)) ([]*models.Dream, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	dreams, err := fn(uow.DreamRepository())
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return dreams, nil
}

// RandomDream returns a random dream or nil when there are none
func (s *dreamService) RandomDream(ctx context.Context) (*models.Dream, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	dream, err := uow.DreamRepository().GetRandom(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get random dream: %w", err)
	}
	return dream, nil
}

// NextDreamID reserves the next dream identifier
func (s *dreamService) NextDreamID(ctx context.Context) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	id, err := uow.DreamRepository().NextID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to reserve dream ID: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

// Stats returns platform statistics, served from cache when possible
func (s *dreamService) Stats(ctx context.Context) (*models.PlatformStats, error) {
	cacheable := false
	var generation int64
	if s.statsCache != nil {
		if stats, ok := s.statsCache.Get(ctx); ok {
			return stats, nil
		}
		gen, err := s.statsCache.Generation(ctx)
		if err != nil {
			log.WithError(err).Warn("Failed to read stats cache generation")
		} else {
			cacheable, generation = true, gen
		}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	stats, err := uow.DreamRepository().GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get platform stats: %w", err)
	}

	if cacheable {
		stored, err := s.statsCache.Set(ctx, stats, generation)
		if err != nil {
			log.WithError(err).Warn("Failed to cache platform stats")
		} else if !stored {
			log.Debug("Stats changed while computing; not caching")
		}
	}

	return stats, nil
}

// WithdrawFunds marks a dream's funds withdrawn and refreshes the ratings of
// its creator and every distinct donor
func (s *dreamService) WithdrawFunds(ctx context.Context, dreamID int64) (*models.Dream, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	dream, err := uow.DreamRepository().GetByIDForUpdate(ctx, dreamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get dream: %w", err)
	}
	if dream == nil {
		return nil, fmt.Errorf("%w: dream %d", ErrNotFound, dreamID)
	}
	if dream.IsWithdrawn {
		return nil, fmt.Errorf("%w: dream %d funds already withdrawn", ErrInvalidState, dreamID)
	}

	withdrawn, err := uow.DreamRepository().MarkWithdrawn(ctx, dreamID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark dream withdrawn: %w", err)
	}

	if _, err := refreshRating(ctx, uow, dream.UserID); err != nil {
		return nil, err
	}

	donorIDs, err := uow.DonationRepository().GetDonorIDsByDream(ctx, dreamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get donors of dream %d: %w", dreamID, err)
	}
	for _, donorID := range donorIDs {
		if donorID == dream.UserID {
			continue
		}
		if _, err := refreshRating(ctx, uow, donorID); err != nil {
			return nil, err
		}
	}

	uow.EventBus().Publish(events.DreamWithdrawnEvent{
		DreamID:   dreamID,
		CreatorID: dream.UserID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"dreamID": dreamID,
		"donors":  len(donorIDs),
	}).Info("Dream funds withdrawn")

	return withdrawn, nil
}

// CanCreateDream reports whether a wallet has donated at least once
func (s *dreamService) CanCreateDream(ctx context.Context, walletAddress string) (bool, error) {
	wallet := blockchain.NormalizeAddress(walletAddress)
	if wallet == "" {
		return false, fmt.Errorf("%w: wallet address is required", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	count, err := uow.DonationRepository().CountByWallet(ctx, wallet)
	if err != nil {
		return false, fmt.Errorf("failed to count donations: %w", err)
	}
	return count > 0, nil
}
