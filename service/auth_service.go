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

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
)

const tokenIssuer = "dreamchain"

// sessionClaims is the JWT payload issued on login
type sessionClaims struct {
	Wallet string `json:"wallet"`
	jwt.RegisteredClaims
}

// AuthConfig configures token issuance
type AuthConfig struct {
	Secret           []byte
	TokenTTL         time.Duration
	RequireSignature bool
}

// authService implements the AuthService interface
type authService struct {
	uowFactory UnitOfWorkFactory
	config     AuthConfig
	now        func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(uowFactory UnitOfWorkFactory, config AuthConfig) AuthService {
	if config.TokenTTL <= 0 {
		config.TokenTTL = 24 * time.Hour
	}
	return &authService{
		uowFactory: uowFactory,
		config:     config,
		now:        time.Now,
	}
}

// Login authenticates a wallet, registering it on first sight, and issues an access token
func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	wallet := blockchain.NormalizeAddress(req.WalletAddress)
	if wallet == "" {
		return nil, fmt.Errorf("%w: wallet address is required", ErrInvalidInput)
	}

	if s.config.RequireSignature {
		if err := s.verifySignature(wallet, req); err != nil {
			log.WithFields(log.Fields{
				"wallet": wallet,
				"error":  err,
			}).Warn("Rejected wallet login")
			return nil, err
		}
	}

	user, err := s.findOrCreateUser(ctx, wallet)
	if err != nil {
		return nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"userID": user.ID,
		"wallet": user.WalletAddress,
	}).Info("Wallet signed in")

	return &models.LoginResult{User: user, AccessToken: token}, nil
}

func (s *authService) verifySignature(wallet string, req models.LoginRequest) error {
	if strings.TrimSpace(req.Message) == "" || strings.TrimSpace(req.Signature) == "" {
		return fmt.Errorf("%w: signed message is required", ErrUnauthorized)
	}
	if err := blockchain.VerifyPersonalSignature(wallet, req.Message, strings.TrimSpace(req.Signature)); err != nil {
		if errors.Is(err, blockchain.ErrSignatureMismatch) {
			return fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return fmt.Errorf("%w: invalid signature: %v", ErrUnauthorized, err)
	}
	return nil
}

func (s *authService) findOrCreateUser(ctx context.Context, wallet string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, created, err := uow.UserRepository().FindOrCreateForUpdate(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to find or create user: %w", err)
	}
	if created {
		uow.EventBus().Publish(events.UserCreatedEvent{
			UserID:        user.ID,
			WalletAddress: user.WalletAddress,
			Source:        "login",
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}

func (s *authService) issueToken(user *models.User) (string, error) {
	now := s.now()
	claims := &sessionClaims{
		Wallet: user.WalletAddress,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.config.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, nil
}

// VerifyToken validates an access token and returns its claims
func (s *authService) VerifyToken(tokenString string) (*models.TokenClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, fmt.Errorf("%w: missing token", ErrUnauthorized)
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.config.Secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token subject", ErrUnauthorized)
	}

	return &models.TokenClaims{
		UserID:        userID,
		WalletAddress: claims.Wallet,
	}, nil
}
