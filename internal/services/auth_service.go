package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/harborcrm/harbor/internal/auth"
	"github.com/harborcrm/harbor/internal/models"
	pkgauth "github.com/harborcrm/harbor/pkg/auth"
	pkglogger "github.com/harborcrm/harbor/pkg/logger"
)

// CredentialStore is the slice of the user store the orchestrator drives.
type CredentialStore interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Delete(ctx context.Context, id string) error
	MarkVerified(ctx context.Context, id string) error
	RecordLogout(ctx context.Context, id string) error
	SetPasswordReset(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	GetByResetTokenHash(ctx context.Context, tokenHash string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// AuthService sequences the auth flows: register, verify, login, refresh,
// logout, and password reset. It owns no state of its own; everything lives
// on the credential record.
type AuthService struct {
	store       CredentialStore
	otp         *OTPService
	guard       *LoginGuard
	tm          *auth.TokenManager
	email       EmailService
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	resetExpiry time.Duration
	now         func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	store CredentialStore,
	otp *OTPService,
	guard *LoginGuard,
	tm *auth.TokenManager,
	email EmailService,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
	resetExpiry time.Duration,
) *AuthService {
	return &AuthService{
		store:       store,
		otp:         otp,
		guard:       guard,
		tm:          tm,
		email:       email,
		logger:      logger,
		auditLogger: auditLogger,
		resetExpiry: resetExpiry,
		now:         time.Now,
	}
}

// UserResponse is the user DTO returned by auth endpoints. The password
// hash never appears here.
type UserResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
	LastLoginAt   string `json:"last_login_at,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// AuthResponse carries a freshly minted token pair plus the user.
type AuthResponse struct {
	AccessToken  string        `json:"-"`
	RefreshToken string        `json:"-"`
	User         *UserResponse `json:"user"`
}

// Register creates an unverified credential record and delivers a
// verification code. Registering an address that is pending verification
// re-issues a fresh code instead of failing, tolerating lost emails.
// Registering a verified address fails with ErrDuplicateEmail.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*UserResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if email == "" || name == "" {
		return nil, models.ErrBadRequest
	}

	// Reject weak passwords before any write
	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.store.GetByEmail(ctx, email)
	if err == nil {
		if existing.EmailVerified {
			s.logger.Info("registration rejected: email already verified")
			return nil, models.ErrDuplicateEmail
		}
		// Pending verification: hand out a fresh code
		if err := s.issueAndDeliverOTP(ctx, existing); err != nil {
			return nil, err
		}
		s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
			EventType: "otp_reissued",
			UserID:    existing.ID,
			Email:     email,
			Success:   true,
		})
		return userModelToResponse(existing), nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check for existing user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hashedPassword, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	now := s.now()
	user := &models.User{
		Email:             email,
		PasswordHash:      hashedPassword,
		Name:              name,
		Role:              models.RoleUser,
		PasswordChangedAt: &now,
	}

	created, err := s.store.Create(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			return nil, models.ErrDuplicateEmail
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// Registration stands or falls with delivery: a record nobody can
	// verify is useless, so roll it back when the email bounces.
	if err := s.issueAndDeliverOTP(ctx, created); err != nil {
		if delErr := s.store.Delete(ctx, created.ID); delErr != nil {
			s.logger.Error("failed to roll back user after email failure",
				slog.String("user_id", created.ID),
				slog.Any("error", delErr))
		}
		return nil, err
	}

	s.logger.Info("user registered", slog.String("user_id", created.ID))
	s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
		EventType: "user_registered",
		UserID:    created.ID,
		Email:     email,
		Success:   true,
	})

	return userModelToResponse(created), nil
}

// VerifyEmail checks the code, flips the verified flag, and returns a token
// pair so the user lands logged in.
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Same failure as a wrong code, so this path cannot probe
			// for registered addresses
			return nil, models.ErrInvalidCode
		}
		s.logger.Error("failed to get user for verification", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.otp.Verify(ctx, user, code); err != nil {
		s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
			EventType:     "email_verification_failed",
			UserID:        user.ID,
			Email:         email,
			Success:       false,
			FailureReason: err.Error(),
		})
		return nil, err
	}

	if err := s.store.MarkVerified(ctx, user.ID); err != nil {
		s.logger.Error("failed to mark user verified",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	user.EmailVerified = true

	s.logger.Info("email verified", slog.String("user_id", user.ID))
	s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
		EventType: "email_verified",
		UserID:    user.ID,
		Email:     email,
		Success:   true,
	})

	return s.issueTokenPair(user)
}

// Login authenticates a verified user and returns a token pair. Unknown
// email and wrong password collapse into ErrInvalidCredentials; unverified
// and locked accounts surface as their own errors so clients can route the
// user to recovery.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, models.ErrInvalidCredentials
	}

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
				EventType:     "login_failed",
				Email:         email,
				Success:       false,
				FailureReason: "unknown_email",
			})
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.guard.CheckEligible(user); err != nil {
		s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        user.ID,
			Success:       false,
			FailureReason: "account_locked",
		})
		return nil, err
	}

	if !user.EmailVerified {
		// Side effect: hand out a fresh code so the client can route
		// straight to verification
		if err := s.issueAndDeliverOTP(ctx, user); err != nil {
			s.logger.Error("failed to issue otp on unverified login",
				slog.String("user_id", user.ID),
				slog.Any("error", err))
		}
		s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        user.ID,
			Success:       false,
			FailureReason: "email_not_verified",
		})
		return nil, &models.EmailNotVerifiedError{Email: user.Email}
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		if err := s.guard.RecordFailure(ctx, user); err != nil {
			return nil, err
		}
		s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        user.ID,
			Success:       false,
			FailureReason: "invalid_credentials",
		})
		return nil, models.ErrInvalidCredentials
	}

	if err := s.guard.RecordSuccess(ctx, user); err != nil {
		return nil, err
	}
	now := s.now()
	user.LastLoginAt = &now

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
		EventType: "login_success",
		UserID:    user.ID,
		Success:   true,
	})

	return s.issueTokenPair(user)
}

// Refresh rotates a refresh token into a new access/refresh pair. The user
// is re-read so deleted or locked accounts and stale-password tokens fail.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if refreshToken = strings.TrimSpace(refreshToken); refreshToken == "" {
		return nil, models.ErrInvalidToken
	}

	claims, err := s.tm.ValidateToken(refreshToken)
	if err != nil {
		return nil, models.ErrInvalidToken
	}

	if claims.Type != models.TokenTypeRefresh {
		s.logger.Warn("refresh attempt with non-refresh token", slog.String("user_id", claims.UserID))
		return nil, models.ErrInvalidToken
	}

	user, err := s.store.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidToken
		}
		s.logger.Error("failed to get user for token refresh", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if user.IsLocked(s.now()) || !user.EmailVerified {
		return nil, models.ErrInvalidToken
	}

	// Tokens issued before a password change are dead
	if user.PasswordChangedAt != nil && claims.IssuedAt != nil &&
		claims.IssuedAt.Time.Before(*user.PasswordChangedAt) {
		s.logger.Info("refresh blocked: token issued before password change",
			slog.String("user_id", user.ID))
		return nil, models.ErrInvalidToken
	}

	s.logger.Info("token refreshed", slog.String("user_id", user.ID))

	return s.issueTokenPair(user)
}

// Logout stamps last_logout_at. Tokens are self-contained, so an issued
// access token stays valid until its natural expiry; the handler clears the
// refresh cookie.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.store.RecordLogout(ctx, userID); err != nil {
		s.logger.Error("failed to record logout",
			slog.String("user_id", userID),
			slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("user logged out", slog.String("user_id", userID))
	return nil
}

// RequestPasswordReset issues a reset token and delivers it by email. The
// caller always sees success; whether the address exists is never revealed
// on this path.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		s.logger.Error("failed to get user for password reset", slog.Any("error", err))
		return models.ErrInternalServer
	}

	token, err := generateResetToken()
	if err != nil {
		s.logger.Error("failed to generate reset token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	expiresAt := s.now().Add(s.resetExpiry)
	if err := s.store.SetPasswordReset(ctx, user.ID, hashResetToken(token), expiresAt); err != nil {
		s.logger.Error("failed to store reset token",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return models.ErrInternalServer
	}

	body := fmt.Sprintf(
		"A password reset was requested for your account.\n\nReset token: %s\n\nThe token expires in %d minutes. If you did not request this, ignore this email.",
		token, int(s.resetExpiry.Minutes()))
	if err := s.email.Send(ctx, user.Email, "Password reset request", body); err != nil {
		return models.ErrServiceUnavailable
	}

	s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
		EventType: "password_reset_requested",
		UserID:    user.ID,
		Email:     email,
		Success:   true,
	})

	return nil
}

// ResetPassword redeems a reset token. Failures are terminal: there is no
// retry counter, a fresh request is required.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return models.ErrResetExpired
	}

	user, err := s.store.GetByResetTokenHash(ctx, hashResetToken(token))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrResetExpired
		}
		s.logger.Error("failed to look up reset token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if user.PasswordResetExpiresAt == nil || s.now().After(*user.PasswordResetExpiresAt) {
		return models.ErrResetExpired
	}

	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return err
	}

	hashedPassword, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.store.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		s.logger.Error("failed to update password",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password reset completed", slog.String("user_id", user.ID))
	s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
		EventType: "password_reset_completed",
		UserID:    user.ID,
		Success:   true,
	})

	return nil
}

// issueAndDeliverOTP generates a fresh code and sends it. Delivery failure
// surfaces as ErrServiceUnavailable so it never reads as a credential error.
func (s *AuthService) issueAndDeliverOTP(ctx context.Context, user *models.User) error {
	code, err := s.otp.Issue(ctx, user.ID)
	if err != nil {
		return models.ErrInternalServer
	}

	body := fmt.Sprintf(
		"Your verification code is %s.\n\nIt expires in %d minutes. If you did not create an account, ignore this email.",
		code, int(s.otp.expiry.Minutes()))
	if err := s.email.Send(ctx, user.Email, "Verify your email address", body); err != nil {
		return models.ErrServiceUnavailable
	}

	return nil
}

func (s *AuthService) issueTokenPair(user *models.User) (*AuthResponse, error) {
	accessToken, err := s.tm.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to generate access token",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	refreshToken, err := s.tm.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to generate refresh token",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         userModelToResponse(user),
	}, nil
}

// generateResetToken returns a URL-safe random token for password reset.
func generateResetToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func userModelToResponse(user *models.User) *UserResponse {
	resp := &UserResponse{
		ID:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt.Format(time.RFC3339),
	}
	if user.LastLoginAt != nil {
		resp.LastLoginAt = user.LastLoginAt.Format(time.RFC3339)
	}
	return resp
}
