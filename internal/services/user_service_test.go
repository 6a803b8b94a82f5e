package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/harborcrm/harbor/internal/models"
	pkgauth "github.com/harborcrm/harbor/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_GetUser_NotFound(t *testing.T) {
	svc := NewUserService(&MockUserStore{}, slog.Default())

	_, err := svc.GetUser(context.Background(), "ghost")

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUserService_ListUsers_ClampsPaging(t *testing.T) {
	var gotLimit, gotOffset int
	store := &MockUserStore{
		ListFunc: func(ctx context.Context, limit, offset int) ([]*models.User, error) {
			gotLimit = limit
			gotOffset = offset
			return []*models.User{NewTestUser("user_1", "a@example.com", "A")}, nil
		},
	}

	svc := NewUserService(store, slog.Default())
	users, err := svc.ListUsers(context.Background(), 1000, -5)

	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 50, gotLimit)
	assert.Equal(t, 0, gotOffset)
}

func TestUserService_UpdateUser_InvalidRole(t *testing.T) {
	svc := NewUserService(&MockUserStore{}, slog.Default())

	_, err := svc.UpdateUser(context.Background(), "user_1", "Name", "superuser")

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestUserService_UpdateUser_Success(t *testing.T) {
	store := &MockUserStore{
		UpdateFunc: func(ctx context.Context, id string, user *models.User) (*models.User, error) {
			updated := NewTestUser(id, "a@example.com", user.Name)
			updated.Role = user.Role
			return updated, nil
		},
	}

	svc := NewUserService(store, slog.Default())
	resp, err := svc.UpdateUser(context.Background(), "user_1", "New Name", models.RoleManager)

	require.NoError(t, err)
	assert.Equal(t, "New Name", resp.Name)
	assert.Equal(t, models.RoleManager, resp.Role)
}

func TestUserService_DeleteUser_SelfDeletionForbidden(t *testing.T) {
	store := &MockUserStore{
		DeleteFunc: func(ctx context.Context, id string) error {
			t.Fatal("self deletion must be rejected before the store is touched")
			return nil
		},
	}

	svc := NewUserService(store, slog.Default())
	err := svc.DeleteUser(context.Background(), "user_1", "user_1")

	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestUserService_DeleteUser_Success(t *testing.T) {
	deleted := false
	store := &MockUserStore{
		DeleteFunc: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}

	svc := NewUserService(store, slog.Default())

	require.NoError(t, svc.DeleteUser(context.Background(), "user_2", "user_1"))
	assert.True(t, deleted)
}

func TestUserService_ChangePassword_WrongCurrent(t *testing.T) {
	user := NewTestUserWithPassword("user_1", "a@example.com", "A", "SecurePassword123!")
	store := &MockUserStore{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return user, nil
		},
		UpdatePasswordFunc: func(ctx context.Context, id, passwordHash string) error {
			t.Fatal("password must not change without the current one")
			return nil
		},
	}

	svc := NewUserService(store, slog.Default())
	err := svc.ChangePassword(context.Background(), "user_1", "WrongCurrent456!", "NewSecurePassword456!")

	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestUserService_ChangePassword_Success(t *testing.T) {
	user := NewTestUserWithPassword("user_1", "a@example.com", "A", "SecurePassword123!")
	var newHash string
	store := &MockUserStore{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return user, nil
		},
		UpdatePasswordFunc: func(ctx context.Context, id, passwordHash string) error {
			newHash = passwordHash
			return nil
		},
	}

	svc := NewUserService(store, slog.Default())

	require.NoError(t, svc.ChangePassword(context.Background(), "user_1", "SecurePassword123!", "NewSecurePassword456!"))
	assert.NoError(t, pkgauth.ComparePassword(newHash, "NewSecurePassword456!"))
}

func TestUserService_GetProfile_MissingReturnsEmpty(t *testing.T) {
	svc := NewUserService(&MockUserStore{}, slog.Default())

	profile, err := svc.GetProfile(context.Background(), "user_1")

	require.NoError(t, err)
	assert.Equal(t, "user_1", profile.UserID)
	assert.Empty(t, profile.Company)
}

func TestUserService_UpdateProfile_StampsOwner(t *testing.T) {
	store := &MockUserStore{
		UpsertProfileFunc: func(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error) {
			return profile, nil
		},
	}

	svc := NewUserService(store, slog.Default())
	profile, err := svc.UpdateProfile(context.Background(), "user_1", &models.UserProfile{
		UserID:  "someone_else",
		Company: "Acme",
	})

	require.NoError(t, err)
	assert.Equal(t, "user_1", profile.UserID, "profile ownership comes from the caller, not the payload")
	assert.False(t, profile.UpdatedAt.IsZero())
}
