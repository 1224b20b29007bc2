package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/board-service/internal/auth"
	"github.com/spec-kit/board-service/internal/config"
	"github.com/spec-kit/board-service/internal/domain"
	"github.com/spec-kit/board-service/internal/repository"
	apperrors "github.com/spec-kit/board-service/pkg/apperrors"
)

// AuthService handles registration and login. Token issuance is a
// boundary concern; the mutation engine only ever sees resolved user IDs.
type AuthService struct {
	store  repository.Store
	tokens *auth.TokenManager
	cfg    config.AuthConfig
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.AuthConfig, store repository.Store) *AuthService {
	return &AuthService{
		store:  store,
		tokens: auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		cfg:    cfg,
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// Register creates a user account.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, apperrors.NewValidationError("name and email required", nil)
	}
	if len(password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}

	if existing, err := s.store.Users().GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if err != nil && !isNotFound(err) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{Name: name, Email: email, PasswordHash: hash}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, expiresAt, nil
}

// GetUser fetches a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}
