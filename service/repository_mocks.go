package service

import (
	"context"
	"time"

	"dreamchain/events"
	"dreamchain/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByWalletAddress(ctx context.Context, walletAddress string) (*models.User, error) {
	args := m.Called(ctx, walletAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, walletAddress string, username, avatar *string) (*models.User, error) {
	args := m.Called(ctx, walletAddress, username, avatar)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindOrCreateForUpdate(ctx context.Context, walletAddress string) (*models.User, bool, error) {
	args := m.Called(ctx, walletAddress)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.User), args.Bool(1), args.Error(2)
}

func (m *MockUserRepository) IncrementDonationStats(ctx context.Context, id int64, amount decimal.Decimal, chances int64) error {
	args := m.Called(ctx, id, amount, chances)
	return args.Error(0)
}

func (m *MockUserRepository) IncrementTotalReceived(ctx context.Context, id int64, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockUserRepository) GetRatingInputs(ctx context.Context, id int64) (*models.RatingInputs, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RatingInputs), args.Error(1)
}

func (m *MockUserRepository) UpdateRating(ctx context.Context, id int64, rating int64, totalDonated, totalReceived decimal.Decimal) (*models.User, error) {
	args := m.Called(ctx, id, rating, totalDonated, totalReceived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUsername(ctx context.Context, walletAddress, username string) (*models.User, error) {
	args := m.Called(ctx, walletAddress, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) GetAllIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockDreamRepository is a mock implementation of DreamRepository
type MockDreamRepository struct {
	mock.Mock
}

func (m *MockDreamRepository) GetByID(ctx context.Context, id int64) (*models.Dream, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dream), args.Error(1)
}

func (m *MockDreamRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Dream, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dream), args.Error(1)
}

func (m *MockDreamRepository) Create(ctx context.Context, dream *models.NewDream) (*models.Dream, error) {
	args := m.Called(ctx, dream)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dream), args.Error(1)
}

func (m *MockDreamRepository) ApplyDonation(ctx context.Context, id int64, amount decimal.Decimal, stars int64) (*models.DreamTotals, error) {
	args := m.Called(ctx, id, amount, stars)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DreamTotals), args.Error(1)
}

func (m *MockDreamRepository) MarkCompleted(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockDreamRepository) MarkWithdrawn(ctx context.Context, id int64) (*models.Dream, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dream), args.Error(1)
}

func (m *MockDreamRepository) List(ctx context.Context, skip, take int) ([]*models.Dream, error) {
	args := m.Called(ctx, skip, take)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Dream), args.Error(1)
}

func (m *MockDreamRepository) GetTop(ctx context.Context, limit int) ([]*models.Dream, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Dream), args.Error(1)
}

func (m *MockDreamRepository) GetCompleted(ctx context.Context, limit int) ([]*models.Dream, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Dream), args.Error(1)
}

func (m *MockDreamRepository) GetRandom(ctx context.Context) (*models.Dream, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dream), args.Error(1)
}

func (m *MockDreamRepository) GetByUser(ctx context.Context, userID int64) ([]*models.Dream, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Dream), args.Error(1)
}

func (m *MockDreamRepository) GetByCreatorWallet(ctx context.Context, walletAddress string, status *models.DreamStatus) ([]*models.Dream, error) {
	args := m.Called(ctx, walletAddress, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Dream), args.Error(1)
}

func (m *MockDreamRepository) NextID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDreamRepository) GetStats(ctx context.Context) (*models.PlatformStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformStats), args.Error(1)
}

// MockDonationRepository is a mock implementation of DonationRepository
type MockDonationRepository struct {
	mock.Mock
}

func (m *MockDonationRepository) GetByID(ctx context.Context, id int64) (*models.Donation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Donation), args.Error(1)
}

func (m *MockDonationRepository) GetByTxHash(ctx context.Context, txHash string) (*models.Donation, error) {
	args := m.Called(ctx, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Donation), args.Error(1)
}

func (m *MockDonationRepository) Create(ctx context.Context, donation *models.Donation) error {
	args := m.Called(ctx, donation)
	return args.Error(0)
}

func (m *MockDonationRepository) List(ctx context.Context, skip, take int) ([]*models.Donation, error) {
	args := m.Called(ctx, skip, take)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Donation), args.Error(1)
}

func (m *MockDonationRepository) GetByDream(ctx context.Context, dreamID int64) ([]*models.Donation, error) {
	args := m.Called(ctx, dreamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Donation), args.Error(1)
}

func (m *MockDonationRepository) GetByWallet(ctx context.Context, walletAddress string) ([]*models.Donation, error) {
	args := m.Called(ctx, walletAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Donation), args.Error(1)
}

func (m *MockDonationRepository) GetDonorIDsByDream(ctx context.Context, dreamID int64) ([]int64, error) {
	args := m.Called(ctx, dreamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockDonationRepository) CountByWallet(ctx context.Context, walletAddress string) (int64, error) {
	args := m.Called(ctx, walletAddress)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
	Published []events.Event
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Published = append(m.Published, event)
	m.Called(event)
}

// OfType returns the published events of the given type
func (m *MockEventPublisher) OfType(eventType events.EventType) []events.Event {
	var result []events.Event
	for _, e := range m.Published {
		if e.Type() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	userRepo     UserRepository
	dreamRepo    DreamRepository
	donationRepo DonationRepository
	eventBus     EventPublisher
}

// SetRepositories wires the repositories returned by the getters
func (m *MockUnitOfWork) SetRepositories(userRepo UserRepository, dreamRepo DreamRepository, donationRepo DonationRepository) {
	m.userRepo = userRepo
	m.dreamRepo = dreamRepo
	m.donationRepo = donationRepo
}

// SetEventBus wires the event publisher returned by EventBus
func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) DreamRepository() DreamRepository {
	return m.dreamRepo
}

func (m *MockUnitOfWork) DonationRepository() DonationRepository {
	return m.donationRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		bus := new(MockEventPublisher)
		bus.On("Publish", mock.Anything).Maybe()
		m.eventBus = bus
	}
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockStatsCache is a mock implementation of StatsCache
type MockStatsCache struct {
	mock.Mock
}

func (m *MockStatsCache) Get(ctx context.Context) (*models.PlatformStats, bool) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*models.PlatformStats), args.Bool(1)
}

func (m *MockStatsCache) Generation(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsCache) Set(ctx context.Context, stats *models.PlatformStats, generation int64) (bool, error) {
	args := m.Called(ctx, stats, generation)
	return args.Bool(0), args.Error(1)
}

func (m *MockStatsCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockChainReader is a mock implementation of ChainReader
type MockChainReader struct {
	mock.Mock
}

func (m *MockChainReader) TransactionInfo(ctx context.Context, txHash string) (*models.TransactionInfo, error) {
	args := m.Called(ctx, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TransactionInfo), args.Error(1)
}

func (m *MockChainReader) BalanceOf(ctx context.Context, address string) (decimal.Decimal, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockDonationObserver is a mock implementation of DonationObserver
type MockDonationObserver struct {
	mock.Mock
}

func (m *MockDonationObserver) ObserveRecorded(currency string, elapsed time.Duration) {
	m.Called(currency, elapsed)
}

func (m *MockDonationObserver) ObserveDuplicate() {
	m.Called()
}

func (m *MockDonationObserver) ObserveRejected(reason string) {
	m.Called(reason)
}
