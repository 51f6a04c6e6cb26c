package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/rbac-service/internal/auth"
	"github.com/spec-kit/rbac-service/internal/domain"
	"github.com/spec-kit/rbac-service/internal/events"
	"github.com/spec-kit/rbac-service/internal/repository"
	apperrors "github.com/spec-kit/rbac-service/pkg/util"
)

// UserService backs the admin user-management surface.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	bcryptCost int
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, dispatcher events.Dispatcher, bcryptCost int) *UserService {
	return &UserService{users: users, dispatcher: dispatcher, bcryptCost: bcryptCost}
}

// List returns all accounts, newest first.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// Create registers a new account with the given role. Role defaults to
// Viewer, matching the least-privileged entry in the permission table.
func (s *UserService) Create(ctx context.Context, actor *auth.Identity, username, password, role string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password required", nil)
	}
	if role == "" {
		role = string(domain.RoleViewer)
	}
	if !domain.ValidRole(role) {
		return nil, apperrors.NewValidationError("role must be Admin, Editor, or Viewer", map[string]any{"role": role})
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.NewConflict("username already exists", map[string]any{"username": username})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         domain.Role(role),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:          uuid.NewString(),
			Type:        events.EventUserCreated,
			Resource:    "User",
			ResourceID:  user.ID,
			PerformedBy: actor.SubjectID,
			Timestamp:   time.Now(),
			Meta:        map[string]any{"username": user.Username, "role": user.Role},
		})
	}
	return user, nil
}
