package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/harborcrm/harbor/internal/handlers"
	"github.com/harborcrm/harbor/internal/models"
	"github.com/harborcrm/harbor/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMe_Success(t *testing.T) {
	mockUsers := &handlers.MockUserService{
		GetUserFunc: func(ctx context.Context, id string) (*services.UserResponse, error) {
			return &services.UserResponse{ID: id, Email: "a@example.com", Name: "A"}, nil
		},
	}

	handler := handlers.NewUserHandler(mockUsers)
	req := handlers.WithAuthContext(handlers.NewTestRequest(t, "GET", "/users/me", nil), "user_1", "a@example.com")

	w := httptest.NewRecorder()
	handler.Me(w, req)

	env := handlers.DecodeEnvelope(t, w, http.StatusOK)
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "user_1", data["id"])
}

func TestMe_Unauthenticated(t *testing.T) {
	handler := handlers.NewUserHandler(&handlers.MockUserService{})
	req := handlers.NewTestRequest(t, "GET", "/users/me", nil)

	w := httptest.NewRecorder()
	handler.Me(w, req)

	handlers.DecodeEnvelope(t, w, http.StatusUnauthorized)
}

func TestUpdateUser_InvalidRole(t *testing.T) {
	handler := handlers.NewUserHandler(&handlers.MockUserService{})

	r := chi.NewRouter()
	r.Put("/users/{id}", handler.Update)

	req := handlers.NewTestRequest(t, "PUT", "/users/user_2", handlers.UpdateUserRequest{
		Name: "Name",
		Role: "superuser",
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	handlers.DecodeEnvelope(t, w, http.StatusBadRequest)
}

func TestDeleteUser_Self(t *testing.T) {
	mockUsers := &handlers.MockUserService{
		DeleteUserFunc: func(ctx context.Context, id, callerID string) error {
			return models.ErrForbidden
		},
	}

	handler := handlers.NewUserHandler(mockUsers)

	r := chi.NewRouter()
	r.Delete("/users/{id}", handler.Delete)

	req := handlers.WithAuthContext(handlers.NewTestRequest(t, "DELETE", "/users/user_1", nil), "user_1", "a@example.com")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	handlers.DecodeEnvelope(t, w, http.StatusForbidden)
}

func TestDeleteUser_Success(t *testing.T) {
	mockUsers := &handlers.MockUserService{
		DeleteUserFunc: func(ctx context.Context, id, callerID string) error {
			assert.Equal(t, "user_2", id)
			assert.Equal(t, "user_1", callerID)
			return nil
		},
	}

	handler := handlers.NewUserHandler(mockUsers)

	r := chi.NewRouter()
	r.Delete("/users/{id}", handler.Delete)

	req := handlers.WithAuthContext(handlers.NewTestRequest(t, "DELETE", "/users/user_2", nil), "user_1", "a@example.com")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	mockUsers := &handlers.MockUserService{
		ChangePasswordFunc: func(ctx context.Context, userID, currentPassword, newPassword string) error {
			return models.ErrInvalidCredentials
		},
	}

	handler := handlers.NewUserHandler(mockUsers)
	req := handlers.WithAuthContext(handlers.NewTestRequest(t, "PUT", "/users/me/password", handlers.ChangePasswordRequest{
		CurrentPassword: "WrongCurrent456!",
		NewPassword:     "NewSecurePassword456!",
	}), "user_1", "a@example.com")

	w := httptest.NewRecorder()
	handler.ChangePassword(w, req)

	handlers.DecodeEnvelope(t, w, http.StatusUnauthorized)
}

func TestUpdateProfile_Success(t *testing.T) {
	mockUsers := &handlers.MockUserService{
		UpdateProfileFunc: func(ctx context.Context, userID string, profile *models.UserProfile) (*models.UserProfile, error) {
			profile.UserID = userID
			return profile, nil
		},
	}

	handler := handlers.NewUserHandler(mockUsers)
	req := handlers.WithAuthContext(handlers.NewTestRequest(t, "PUT", "/users/me/profile", handlers.UpdateProfileRequest{
		Company:  "Acme Corp",
		Timezone: "Europe/Berlin",
	}), "user_1", "a@example.com")

	w := httptest.NewRecorder()
	handler.UpdateProfile(w, req)

	env := handlers.DecodeEnvelope(t, w, http.StatusOK)
	assert.True(t, env.Success)
}
