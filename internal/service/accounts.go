package service

import (
	"context"
	"time"

	"github.com/cx-tal-miterani/airline-reservation-system/internal/apperr"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/models"
)

// AccountService defines registration, login and profile operations
type AccountService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	GetProfile(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, p models.Profile) (*models.User, error)
}

// AccountStore persists users
type AccountStore interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	GetProfile(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, p models.Profile) error
}

// TokenIssuer signs session tokens
type TokenIssuer interface {
	Issue(userID int64, username string, isAdmin bool) (string, time.Time, error)
}

type accountServiceImpl struct {
	store  AccountStore
	tokens TokenIssuer
}

func NewAccountService(store AccountStore, tokens TokenIssuer) AccountService {
	return &accountServiceImpl{store: store, tokens: tokens}
}

func (s *accountServiceImpl) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	return s.store.Register(ctx, req)
}

func (s *accountServiceImpl) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, apperr.Validation("username and password are required")
	}

	user, err := s.store.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		return nil, apperr.Storage("failed to issue token", err)
	}
	return &models.LoginResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *accountServiceImpl) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	return s.store.GetProfile(ctx, userID)
}

func (s *accountServiceImpl) UpdateProfile(ctx context.Context, userID int64, p models.Profile) (*models.User, error) {
	if err := s.store.UpdateProfile(ctx, userID, p); err != nil {
		return nil, err
	}
	return s.store.GetProfile(ctx, userID)
}
