package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/rbac-service/internal/auth"
	"github.com/spec-kit/rbac-service/internal/config"
	"github.com/spec-kit/rbac-service/internal/domain"
	"github.com/spec-kit/rbac-service/internal/repository"
	apperrors "github.com/spec-kit/rbac-service/pkg/util"
)

// TokenPair bundles the credentials minted at login.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AuthService coordinates the login, refresh and logout flows.
type AuthService struct {
	users    repository.UserRepository
	tokenMgr *auth.TokenManager
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:    users,
		tokenMgr: auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL()),
	}
}

// Login authenticates a username/password pair and mints a token pair. An
// unknown username and a wrong password fail identically so callers cannot
// tell which factor was wrong.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, *TokenPair, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewInvalidCredentials()
		}
		return nil, nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewInvalidCredentials()
	}

	pair, err := s.mintPair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh verifies a refresh token and mints a new access token carrying the
// account's current role, not the role at original login time.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.User, string, time.Time, error) {
	subjectID, err := s.tokenMgr.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid or expired refresh token")
	}

	user, err := s.users.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid refresh token")
		}
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.IssueAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Logout is stateless; there is no server-side revocation list, so a stolen
// refresh token stays valid until natural expiry. The handler clears the
// cookie.
func (s *AuthService) Logout(_ context.Context) error {
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) mintPair(user *domain.User) (*TokenPair, error) {
	access, accessExp, err := s.tokenMgr.IssueAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.tokenMgr.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}
