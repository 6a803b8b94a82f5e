package models

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrBadRequest     = errors.New("bad request")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")

	// Credential errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")

	// OTP verification errors
	ErrOTPExpired      = errors.New("verification code expired")
	ErrTooManyAttempts = errors.New("too many verification attempts")
	ErrInvalidCode     = errors.New("invalid verification code")

	// Password reset errors
	ErrResetExpired = errors.New("password reset token expired or invalid")

	// Infrastructure failures surfaced as "try again later", never as a
	// credential error
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)

// EmailNotVerifiedError blocks login for unverified accounts. It carries the
// email so clients can route the user to the verification screen.
type EmailNotVerifiedError struct {
	Email string
}

func (e *EmailNotVerifiedError) Error() string {
	return "email address not verified"
}

// AccountLockedError signals a temporary login lockout and carries the time
// the lock expires.
type AccountLockedError struct {
	Until time.Time
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked until %s", e.Until.UTC().Format(time.RFC3339))
}
