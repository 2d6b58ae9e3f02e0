package service

import (
	"context"
	"testing"
	"time"

	"dreamchain/models"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signPersonal(t *testing.T, message string) (wallet, signature string) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27

	return crypto.PubkeyToAddress(key.PublicKey).Hex(), hexutil.Encode(sig)
}

func TestAuthService_Login_IssuesVerifiableToken(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockUserRepo, _, _ := newUserTestMocks()

	wallet, signature := signPersonal(t, "Sign in to Dreamchain")
	user := &models.User{ID: 11, WalletAddress: wallet}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockUserRepo.On("FindOrCreateForUpdate", ctx, wallet).Return(user, true, nil)

	service := NewAuthService(mockFactory, AuthConfig{Secret: testSecret, TokenTTL: time.Hour, RequireSignature: true})

	result, err := service.Login(ctx, models.LoginRequest{
		WalletAddress: wallet,
		Message:       "Sign in to Dreamchain",
		Signature:     signature,
	})

	require.NoError(t, err)
	assert.Equal(t, user, result.User)
	require.NotEmpty(t, result.AccessToken)

	claims, err := service.VerifyToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(11), claims.UserID)
	assert.Equal(t, wallet, claims.WalletAddress)
}

func TestAuthService_Login_RejectsForeignSignature(t *testing.T) {
	ctx := context.Background()
	mockFactory := new(MockUnitOfWorkFactory)

	_, signature := signPersonal(t, "Sign in to Dreamchain")

	service := NewAuthService(mockFactory, AuthConfig{Secret: testSecret, RequireSignature: true})

	_, err := service.Login(ctx, models.LoginRequest{
		WalletAddress: testDonorWallet,
		Message:       "Sign in to Dreamchain",
		Signature:     signature,
	})

	assert.ErrorIs(t, err, ErrUnauthorized)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestAuthService_Login_MissingSignature(t *testing.T) {
	service := NewAuthService(new(MockUnitOfWorkFactory), AuthConfig{Secret: testSecret, RequireSignature: true})

	_, err := service.Login(context.Background(), models.LoginRequest{WalletAddress: testDonorWallet})

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_Login_WithoutSignatureRequirement(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockUserRepo, _, _ := newUserTestMocks()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockUserRepo.On("FindOrCreateForUpdate", ctx, testDonorWallet).
		Return(&models.User{ID: 1, WalletAddress: testDonorWallet}, false, nil)

	service := NewAuthService(mockFactory, AuthConfig{Secret: testSecret})

	result, err := service.Login(ctx, models.LoginRequest{WalletAddress: "0x52908400098527886e0f7030069857d2e4169ee7"})

	require.NoError(t, err)
	assert.Equal(t, testDonorWallet, result.User.WalletAddress)
}

func TestAuthService_VerifyToken_Rejects(t *testing.T) {
	service := NewAuthService(new(MockUnitOfWorkFactory), AuthConfig{Secret: testSecret, TokenTTL: time.Hour})

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &sessionClaims{
		Wallet: testDonorWallet,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	expiredToken, err := expired.SignedString(testSecret)
	require.NoError(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1", Issuer: tokenIssuer},
	})
	foreignToken, err := foreign.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"expired":      expiredToken,
		"wrong secret": foreignToken,
	} {
		t.Run(name, func(t *testing.T) {
			claims, err := service.VerifyToken(token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}
