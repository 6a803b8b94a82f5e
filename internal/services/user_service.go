package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/harborcrm/harbor/internal/models"
	pkgauth "github.com/harborcrm/harbor/pkg/auth"
)

// UserStore covers account administration and profile persistence.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Update(ctx context.Context, id string, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	UpsertProfile(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error)
}

// UserService handles account administration and per-user profile data.
type UserService struct {
	store  UserStore
	logger *slog.Logger
	now    func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, logger *slog.Logger) *UserService {
	return &UserService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// GetUser returns a single user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*UserResponse, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return userModelToResponse(user), nil
}

// ListUsers returns a page of users ordered by creation time.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]*UserResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.store.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list users", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	responses := make([]*UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, userModelToResponse(user))
	}
	return responses, nil
}

// UpdateUser changes a user's display name and role. Email and password are
// out of reach here; those move through their own verified flows.
func (s *UserService) UpdateUser(ctx context.Context, id, name, role string) (*UserResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.ErrBadRequest
	}
	if !models.ValidRole(role) {
		return nil, models.ErrBadRequest
	}

	updated, err := s.store.Update(ctx, id, &models.User{Name: name, Role: role})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user updated",
		slog.String("user_id", id),
		slog.String("role", role))

	return userModelToResponse(updated), nil
}

// DeleteUser removes an account. A caller cannot delete themselves; that
// would strand an admin-less deployment one click away.
func (s *UserService) DeleteUser(ctx context.Context, id, callerID string) error {
	if id == callerID {
		return models.ErrForbidden
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete user", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("user deleted", slog.String("user_id", id))
	return nil
}

// ChangePassword verifies the current password before accepting the new
// one. The password_changed_at stamp moves, so outstanding refresh tokens
// stop working.
func (s *UserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get user for password change", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return models.ErrInvalidCredentials
	}

	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return err
	}

	hashedPassword, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.store.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		s.logger.Error("failed to update password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password changed", slog.String("user_id", userID))
	return nil
}

// GetProfile returns the profile record for a user. A user with no saved
// profile gets an empty one rather than a 404.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return &models.UserProfile{UserID: userID}, nil
		}
		s.logger.Error("failed to get profile", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return profile, nil
}

// UpdateProfile creates or replaces the user's profile record.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, profile *models.UserProfile) (*models.UserProfile, error) {
	profile.UserID = userID
	profile.UpdatedAt = s.now()

	updated, err := s.store.UpsertProfile(ctx, profile)
	if err != nil {
		s.logger.Error("failed to upsert profile", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("profile updated", slog.String("user_id", userID))
	return updated, nil
}
