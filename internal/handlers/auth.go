package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/harborcrm/harbor/internal/auth"
	"github.com/harborcrm/harbor/internal/models"
	"github.com/harborcrm/harbor/internal/services"
	pkgauth "github.com/harborcrm/harbor/pkg/auth"
	pkghttp "github.com/harborcrm/harbor/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Register(ctx context.Context, email, password, name string) (*services.UserResponse, error)
	VerifyEmail(ctx context.Context, email, code string) (*services.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*services.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*services.AuthResponse, error)
	Logout(ctx context.Context, userID string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	service      AuthServiceInterface
	cookieConfig auth.CookieConfig
	refreshTTL   time.Duration
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, cookieConfig auth.CookieConfig, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		service:      service,
		cookieConfig: cookieConfig,
		refreshTTL:   refreshTTL,
	}
}

// Request DTOs

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
}

// VerifyEmailRequest represents the request body for email verification
type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest represents the request body for a reset request
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest represents the request body for redeeming a reset token
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// Register handles user registration. On success the response carries no
// tokens; the account stays unusable until the emailed code is verified.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.service.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		var weakErr *pkgauth.WeakPasswordError
		switch {
		case errors.As(err, &weakErr):
			pkghttp.WriteFailureData(w, http.StatusBadRequest, "Password does not meet requirements",
				map[string]any{"reasons": weakErr.Reasons})
		case errors.Is(err, models.ErrDuplicateEmail):
			pkghttp.WriteConflict(w, "An account with this email already exists")
		case errors.Is(err, models.ErrServiceUnavailable):
			pkghttp.WriteServiceUnavailable(w, "Could not send verification email. Please try again.")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid registration details")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteSuccess(w, http.StatusCreated, map[string]any{
		"user":    user,
		"message": "Verification code sent. Check your email.",
	})
}

// VerifyEmail checks the emailed code and, on success, logs the user in.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	resp, err := h.service.VerifyEmail(r.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCode):
			pkghttp.WriteBadRequest(w, "Invalid verification code")
		case errors.Is(err, models.ErrOTPExpired):
			pkghttp.WriteBadRequest(w, "Verification code has expired. Request a new one.")
		case errors.Is(err, models.ErrTooManyAttempts):
			pkghttp.WriteTooManyRequests(w, "Too many attempts. Request a new verification code.")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	h.writeAuthenticated(w, http.StatusOK, resp)
}

// Login authenticates a user and hands out a token pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	resp, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var lockedErr *models.AccountLockedError
		var unverifiedErr *models.EmailNotVerifiedError
		switch {
		case errors.Is(err, models.ErrInvalidCredentials):
			pkghttp.WriteUnauthorized(w, "Invalid email or password")
		case errors.As(err, &unverifiedErr):
			pkghttp.WriteFailureData(w, http.StatusForbidden, "Email not verified. A new code has been sent.",
				map[string]any{"email": unverifiedErr.Email, "verification_required": true})
		case errors.As(err, &lockedErr):
			pkghttp.WriteFailureData(w, http.StatusTooManyRequests, "Account temporarily locked after repeated failures",
				map[string]any{"locked_until": lockedErr.Until})
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	h.writeAuthenticated(w, http.StatusOK, resp)
}

// Refresh rotates the refresh token held in the http-only cookie.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken, err := auth.GetRefreshTokenCookie(r)
	if err != nil {
		pkghttp.WriteUnauthorized(w, "Missing refresh token")
		return
	}

	resp, err := h.service.Refresh(r.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, models.ErrInvalidToken) {
			auth.ClearRefreshTokenCookie(w, h.cookieConfig)
			pkghttp.WriteUnauthorized(w, "Invalid or expired refresh token")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	h.writeAuthenticated(w, http.StatusOK, resp)
}

// Logout records the logout and clears the refresh cookie. The access token
// is self-contained and rides out its remaining lifetime.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := h.service.Logout(r.Context(), claims.UserID); err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	auth.ClearRefreshTokenCookie(w, h.cookieConfig)
	pkghttp.WriteSuccessMessage(w, http.StatusOK, "Logged out")
}

// ForgotPassword starts a password reset cycle. The response never reveals
// whether the address is registered.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		if errors.Is(err, models.ErrServiceUnavailable) {
			pkghttp.WriteServiceUnavailable(w, "Could not send reset email. Please try again.")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteSuccessMessage(w, http.StatusAccepted,
		"If that email is registered, a reset link has been sent.")
}

// ResetPassword redeems a reset token for a new password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		var weakErr *pkgauth.WeakPasswordError
		switch {
		case errors.Is(err, models.ErrResetExpired):
			pkghttp.WriteBadRequest(w, "Reset token is invalid or has expired")
		case errors.As(err, &weakErr):
			pkghttp.WriteFailureData(w, http.StatusBadRequest, "Password does not meet requirements",
				map[string]any{"reasons": weakErr.Reasons})
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteSuccessMessage(w, http.StatusOK, "Password has been reset. You can now log in.")
}

func (h *AuthHandler) writeAuthenticated(w http.ResponseWriter, statusCode int, resp *services.AuthResponse) {
	auth.SetRefreshTokenCookie(w, resp.RefreshToken, h.refreshTTL, h.cookieConfig)
	pkghttp.WriteTokenResponse(w, statusCode, resp.AccessToken, map[string]any{"user": resp.User})
}
