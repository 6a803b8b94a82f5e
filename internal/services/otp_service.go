package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/harborcrm/harbor/internal/models"
)

// OTPStore is the slice of the credential store the OTP issuer mutates.
type OTPStore interface {
	SetOTP(ctx context.Context, userID, otpHash string, expiresAt time.Time) error
	IncrementOTPAttempts(ctx context.Context, userID string) (int, error)
	ClearOTP(ctx context.Context, userID string) error
}

// OTPService owns the one-time-code lifecycle for email verification. Only
// the SHA-256 hash of a code is ever persisted; the plaintext leaves Issue
// exactly once, bound for the email collaborator.
type OTPService struct {
	store       OTPStore
	logger      *slog.Logger
	expiry      time.Duration
	maxAttempts int
	now         func() time.Time
}

// NewOTPService creates a new OTPService.
func NewOTPService(store OTPStore, logger *slog.Logger, expiry time.Duration, maxAttempts int) *OTPService {
	return &OTPService{
		store:       store,
		logger:      logger,
		expiry:      expiry,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// Issue generates a 6-digit code for the user, stores its hash and expiry,
// resets the attempt counter, and returns the plaintext. Issuing while a
// code is outstanding overwrites it: one valid code per record.
func (s *OTPService) Issue(ctx context.Context, userID string) (string, error) {
	code, err := generateOTPCode()
	if err != nil {
		s.logger.Error("failed to generate otp code", slog.Any("error", err))
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	expiresAt := s.now().Add(s.expiry)

	if err := s.store.SetOTP(ctx, userID, hashOTPCode(code), expiresAt); err != nil {
		s.logger.Error("failed to store otp",
			slog.String("user_id", userID),
			slog.Any("error", err))
		return "", fmt.Errorf("failed to store code: %w", err)
	}

	s.logger.Info("otp issued",
		slog.String("user_id", userID),
		slog.Time("expires_at", expiresAt))

	return code, nil
}

// Verify checks candidateCode against the outstanding code on user. The
// attempt counter is incremented atomically at the store; the ceiling is
// inclusive of the attempt that reaches it. On success all OTP fields are
// cleared, so a repeat of the same code fails with ErrInvalidCode.
func (s *OTPService) Verify(ctx context.Context, user *models.User, candidateCode string) error {
	if !user.HasPendingOTP() {
		return models.ErrInvalidCode
	}

	if s.now().After(*user.OTPExpiresAt) {
		return models.ErrOTPExpired
	}

	if user.OTPAttemptCount >= s.maxAttempts {
		return models.ErrTooManyAttempts
	}

	count, err := s.store.IncrementOTPAttempts(ctx, user.ID)
	if err != nil {
		s.logger.Error("failed to increment otp attempts",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return models.ErrInternalServer
	}

	candidateHash := hashOTPCode(candidateCode)
	if subtle.ConstantTimeCompare([]byte(candidateHash), []byte(*user.OTPHash)) == 1 {
		if err := s.store.ClearOTP(ctx, user.ID); err != nil {
			s.logger.Error("failed to clear otp after verification",
				slog.String("user_id", user.ID),
				slog.Any("error", err))
			return models.ErrInternalServer
		}
		return nil
	}

	if count >= s.maxAttempts {
		s.logger.Warn("otp attempt ceiling reached", slog.String("user_id", user.ID))
		return models.ErrTooManyAttempts
	}

	return models.ErrInvalidCode
}

// generateOTPCode returns a uniformly random 6-digit numeric code.
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashOTPCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
