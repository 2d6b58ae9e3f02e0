package service

import (
	"context"
	"errors"
	"testing"

	"dreamchain/events"
	"dreamchain/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDreamService_CreateDream_DefaultGoal(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockUserRepo, mockDreamRepo, _ := newUserTestMocks()

	bus := new(MockEventPublisher)
	bus.On("Publish", mock.Anything).Return()
	mockUoW.SetEventBus(bus)

	service := NewDreamService(mockFactory, nil)

	creator := &models.User{ID: 2, WalletAddress: testCreatorWallet}
	created := &models.Dream{ID: 10, UserID: 2, Title: "Bike", Goal: models.DefaultDreamGoal, Status: models.DreamStatusActive}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByIDForUpdate", ctx, int64(2)).Return(creator, nil)
	mockDreamRepo.On("Create", ctx, mock.MatchedBy(func(d *models.NewDream) bool {
		return d.UserID == 2 && d.Title == "Bike" && d.Goal.Equal(decimal.NewFromInt(100))
	})).Return(created, nil)
	mockUserRepo.On("GetRatingInputs", ctx, int64(2)).Return(&models.RatingInputs{
		TotalDonated:  decimal.Zero,
		TotalReceived: decimal.Zero,
		DreamsCreated: 1,
	}, nil)
	mockUserRepo.On("UpdateRating", ctx, int64(2), int64(0), decimal.Zero, decimal.Zero).Return(creator, nil)

	dream, err := service.CreateDream(ctx, models.NewDream{UserID: 2, Title: " Bike "})

	require.NoError(t, err)
	assert.Equal(t, created, dream)
	mockDreamRepo.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	assert.Len(t, bus.OfType(events.EventTypeDreamCreated), 1)
}

func TestDreamService_CreateDream_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("missing title", func(t *testing.T) {
		mockFactory := new(MockUnitOfWorkFactory)
		service := NewDreamService(mockFactory, nil)

		_, err := service.CreateDream(ctx, models.NewDream{UserID: 1, Title: "  "})

		assert.ErrorIs(t, err, ErrInvalidInput)
		mockFactory.AssertNotCalled(t, "Create")
	})

	t.Run("negative goal", func(t *testing.T) {
		mockFactory := new(MockUnitOfWorkFactory)
		service := NewDreamService(mockFactory, nil)

		goal := dec("-1")
		_, err := service.CreateDream(ctx, models.NewDream{UserID: 1, Title: "Car", Goal: &goal})

		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("explicit zero goal", func(t *testing.T) {
		mockFactory := new(MockUnitOfWorkFactory)
		service := NewDreamService(mockFactory, nil)

		goal := decimal.Zero
		_, err := service.CreateDream(ctx, models.NewDream{UserID: 1, Title: "Car", Goal: &goal})

		assert.ErrorIs(t, err, ErrInvalidInput)
		mockFactory.AssertNotCalled(t, "Create")
	})

	t.Run("non-positive id", func(t *testing.T) {
		mockFactory := new(MockUnitOfWorkFactory)
		service := NewDreamService(mockFactory, nil)

		id := int64(0)
		_, err := service.CreateDream(ctx, models.NewDream{ID: &id, UserID: 1, Title: "Car"})

		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown creator", func(t *testing.T) {
		mockFactory, mockUoW, mockUserRepo, _, _ := newUserTestMocks()
		service := NewDreamService(mockFactory, nil)

		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockUserRepo.On("GetByIDForUpdate", ctx, int64(9)).Return(nil, nil)

		_, err := service.CreateDream(ctx, models.NewDream{UserID: 9, Title: "Car"})

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDreamService_CreateDream_ReservedIDTaken(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockUserRepo, mockDreamRepo, _ := newUserTestMocks()

	service := NewDreamService(mockFactory, nil)

	id := int64(42)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockUserRepo.On("GetByIDForUpdate", ctx, int64(2)).Return(&models.User{ID: 2}, nil)
	mockDreamRepo.On("Create", ctx, mock.MatchedBy(func(d *models.NewDream) bool {
		return d.ID != nil && *d.ID == 42
	})).Return(nil, ErrDuplicateDreamID)

	dream, err := service.CreateDream(ctx, models.NewDream{ID: &id, UserID: 2, Title: "Bike"})

	assert.Nil(t, dream)
	assert.ErrorIs(t, err, ErrConflict)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestDreamService_Stats_UsesCache(t *testing.T) {
	ctx := context.Background()
	mockFactory := new(MockUnitOfWorkFactory)
	cache := new(MockStatsCache)

	cached := &models.PlatformStats{TotalDreams: 3, TotalRaised: dec("250"), ActiveDonors: 2, CompletedDreams: 1}
	cache.On("Get", ctx).Return(cached, true)

	service := NewDreamService(mockFactory, cache)

	stats, err := service.Stats(ctx)

	require.NoError(t, err)
	assert.Equal(t, cached, stats)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestDreamService_Stats_FillsCacheOnMiss(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, _, mockDreamRepo, _ := newUserTestMocks()
	cache := new(MockStatsCache)

	fresh := &models.PlatformStats{TotalDreams: 1, TotalRaised: dec("5")}

	cache.On("Get", ctx).Return(nil, false)
	cache.On("Generation", ctx).Return(int64(7), nil)
	cache.On("Set", ctx, fresh, int64(7)).Return(true, nil)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockDreamRepo.On("GetStats", ctx).Return(fresh, nil)

	service := NewDreamService(mockFactory, cache)

	stats, err := service.Stats(ctx)

	require.NoError(t, err)
	assert.Equal(t, fresh, stats)
	cache.AssertExpectations(t)
}

func TestDreamService_Stats_StaleSetIsNotAnError(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, _, mockDreamRepo, _ := newUserTestMocks()
	cache := new(MockStatsCache)

	fresh := &models.PlatformStats{TotalDreams: 2}

	cache.On("Get", ctx).Return(nil, false)
	cache.On("Generation", ctx).Return(int64(3), nil)
	cache.On("Set", ctx, fresh, int64(3)).Return(false, nil)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockDreamRepo.On("GetStats", ctx).Return(fresh, nil)

	stats, err := NewDreamService(mockFactory, cache).Stats(ctx)

	require.NoError(t, err)
	assert.Equal(t, fresh, stats)
	cache.AssertExpectations(t)
}

func TestDreamService_Stats_GenerationFailureSkipsCaching(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, _, mockDreamRepo, _ := newUserTestMocks()
	cache := new(MockStatsCache)

	fresh := &models.PlatformStats{TotalDreams: 2}

	cache.On("Get", ctx).Return(nil, false)
	cache.On("Generation", ctx).Return(int64(0), errors.New("connection refused"))
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockDreamRepo.On("GetStats", ctx).Return(fresh, nil)

	stats, err := NewDreamService(mockFactory, cache).Stats(ctx)

	require.NoError(t, err)
	assert.Equal(t, fresh, stats)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestDreamService_WithdrawFunds_RefreshesCreatorAndDonors(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockUserRepo, mockDreamRepo, mockDonationRepo := newUserTestMocks()

	service := NewDreamService(mockFactory, nil)

	dream := activeDream(7, 2, "100", "120")
	withdrawn := *dream
	withdrawn.IsWithdrawn = true
	zero := &models.RatingInputs{TotalDonated: decimal.Zero, TotalReceived: decimal.Zero}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockDreamRepo.On("GetByIDForUpdate", ctx, int64(7)).Return(dream, nil)
	mockDreamRepo.On("MarkWithdrawn", ctx, int64(7)).Return(&withdrawn, nil)
	mockDonationRepo.On("GetDonorIDsByDream", ctx, int64(7)).Return([]int64{4, 5}, nil)

	for _, id := range []int64{2, 4, 5} {
		mockUserRepo.On("GetByIDForUpdate", ctx, id).Return(&models.User{ID: id}, nil).Once()
		mockUserRepo.On("GetRatingInputs", ctx, id).Return(zero, nil).Once()
		mockUserRepo.On("UpdateRating", ctx, id, int64(0), decimal.Zero, decimal.Zero).Return(&models.User{ID: id}, nil).Once()
	}

	result, err := service.WithdrawFunds(ctx, 7)

	require.NoError(t, err)
	assert.True(t, result.IsWithdrawn)
	mockUserRepo.AssertExpectations(t)
	mockDreamRepo.AssertExpectations(t)
}

func TestDreamService_WithdrawFunds_AlreadyWithdrawn(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, _, mockDreamRepo, _ := newUserTestMocks()

	service := NewDreamService(mockFactory, nil)

	dream := activeDream(7, 2, "100", "120")
	dream.IsWithdrawn = true

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockDreamRepo.On("GetByIDForUpdate", ctx, int64(7)).Return(dream, nil)

	_, err := service.WithdrawFunds(ctx, 7)

	assert.ErrorIs(t, err, ErrInvalidState)
	mockDreamRepo.AssertNotCalled(t, "MarkWithdrawn", mock.Anything, mock.Anything)
}

func TestDreamService_CanCreateDream(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, _, _, mockDonationRepo := newUserTestMocks()

	service := NewDreamService(mockFactory, nil)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockDonationRepo.On("CountByWallet", ctx, testDonorWallet).Return(int64(2), nil).Once()
	mockDonationRepo.On("CountByWallet", ctx, testCreatorWallet).Return(int64(0), nil).Once()

	ok, err := service.CanCreateDream(ctx, testDonorWallet)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.CanCreateDream(ctx, testCreatorWallet)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDreamService_TopDreams_DefaultLimit(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, _, mockDreamRepo, _ := newUserTestMocks()

	service := NewDreamService(mockFactory, nil)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockDreamRepo.On("GetTop", ctx, defaultPageSize).Return([]*models.Dream{}, nil)

	_, err := service.TopDreams(ctx, 0)

	require.NoError(t, err)
	mockDreamRepo.AssertExpectations(t)
}
