package api

import (
	"context"

	"dreamchain/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockDonationService struct {
	mock.Mock
}

func (m *MockDonationService) RecordDonation(ctx context.Context, req models.DonationRequest) (*models.DonationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DonationResult), args.Error(1)
}

func (m *MockDonationService) GetDonation(ctx context.Context, id int64) (*models.Donation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Donation), args.Error(1)
}

func (m *MockDonationService) ListDonations(ctx context.Context, skip, take int) ([]*models.Donation, error) {
	args := m.Called(ctx, skip, take)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Donation), args.Error(1)
}

func (m *MockDonationService) DonationsByDream(ctx context.Context, dreamID int64) ([]*models.Donation, error) {
	args := m.Called(ctx, dreamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Donation), args.Error(1)
}

func (m *MockDonationService) DonationsByWallet(ctx context.Context, walletAddress string) ([]*models.Donation, error) {
	args := m.Called(ctx, walletAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Donation), args.Error(1)
}

func (m *MockDonationService) DonationByTxHash(ctx context.Context, txHash string) (*models.Donation, error) {
	args := m.Called(ctx, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Donation), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) CreateUser(ctx context.Context, walletAddress string, username, avatar *string) (*models.User, error) {
	args := m.Called(ctx, walletAddress, username, avatar)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetUserByWallet(ctx context.Context, walletAddress string) (*models.User, error) {
	args := m.Called(ctx, walletAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserService) UpdateUsername(ctx context.Context, walletAddress, username string) (*models.User, error) {
	args := m.Called(ctx, walletAddress, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) CreatedDreams(ctx context.Context, walletAddress string) ([]*models.Dream, error) {
	args := m.Called(ctx, walletAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Dream), args.Error(1)
}

func (m *MockUserService) DonatedDonations(ctx context.Context, walletAddress string) ([]*models.Donation, error) {
	args := m.Called(ctx, walletAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Donation), args.Error(1)
}

func (m *MockUserService) CompletedDreams(ctx context.Context, walletAddress string) ([]*models.Dream, error) {
	args := m.Called(ctx, walletAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Dream), args.Error(1)
}

func (m *MockUserService) RefreshRating(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) RefreshAllRatings(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockDreamService struct {
	mock.Mock
}

func (m *MockDreamService) dream(args mock.Arguments) (*models.Dream, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dream), args.Error(1)
}

func (m *MockDreamService) dreams(args mock.Arguments) ([]*models.Dream, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Dream), args.Error(1)
}

func (m *MockDreamService) CreateDream(ctx context.Context, dream models.NewDream) (*models.Dream, error) {
	return m.dream(m.Called(ctx, dream))
}

func (m *MockDreamService) GetDream(ctx context.Context, id int64) (*models.Dream, error) {
	return m.dream(m.Called(ctx, id))
}

func (m *MockDreamService) ListDreams(ctx context.Context, skip, take int) ([]*models.Dream, error) {
	return m.dreams(m.Called(ctx, skip, take))
}

func (m *MockDreamService) TopDreams(ctx context.Context, limit int) ([]*models.Dream, error) {
	return m.dreams(m.Called(ctx, limit))
}

func (m *MockDreamService) NewDreams(ctx context.Context, limit int) ([]*models.Dream, error) {
	return m.dreams(m.Called(ctx, limit))
}

func (m *MockDreamService) CompletedDreams(ctx context.Context, limit int) ([]*models.Dream, error) {
	return m.dreams(m.Called(ctx, limit))
}

func (m *MockDreamService) RandomDream(ctx context.Context) (*models.Dream, error) {
	return m.dream(m.Called(ctx))
}

func (m *MockDreamService) DreamsByUser(ctx context.Context, userID int64) ([]*models.Dream, error) {
	return m.dreams(m.Called(ctx, userID))
}

func (m *MockDreamService) NextDreamID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDreamService) Stats(ctx context.Context) (*models.PlatformStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformStats), args.Error(1)
}

func (m *MockDreamService) WithdrawFunds(ctx context.Context, dreamID int64) (*models.Dream, error) {
	return m.dream(m.Called(ctx, dreamID))
}

func (m *MockDreamService) CanCreateDream(ctx context.Context, walletAddress string) (bool, error) {
	args := m.Called(ctx, walletAddress)
	return args.Bool(0), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoginResult), args.Error(1)
}

func (m *MockAuthService) VerifyToken(token string) (*models.TokenClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenClaims), args.Error(1)
}

type MockChainService struct {
	mock.Mock
}

func (m *MockChainService) VerifyTransaction(ctx context.Context, txHash string) (*models.TransactionInfo, error) {
	args := m.Called(ctx, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TransactionInfo), args.Error(1)
}

func (m *MockChainService) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
