package models

import (
	"time"
)

// User roles
const (
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// User is the credential record: one per registered identity. Email is
// stored lowercase and unique. PasswordHash is never serialized to any
// response; handlers convert to DTOs that omit it.
type User struct {
	ID            string
	Email         string
	PasswordHash  string
	Name          string
	Role          string // "user", "manager", "admin"
	EmailVerified bool   // monotonic: never reverts to false

	// Outstanding OTP verification cycle; NULL outside a cycle
	OTPHash         *string
	OTPExpiresAt    *time.Time
	OTPAttemptCount int

	// Login failure tracking
	LoginFailureCount int
	LockedUntil       *time.Time

	// Outstanding password reset cycle; NULL outside a cycle
	PasswordResetTokenHash *string
	PasswordResetExpiresAt *time.Time

	LastLoginAt       *time.Time
	LastLogoutAt      *time.Time
	PasswordChangedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasPendingOTP reports whether a verification cycle is outstanding.
func (u *User) HasPendingOTP() bool {
	return u.OTPHash != nil && u.OTPExpiresAt != nil
}

// IsLocked reports whether a login lock is currently in effect. Lock expiry
// is evaluated lazily against the clock, not by a background timer.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// ValidRole reports whether role is one of the fixed role enumeration.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// UserProfile holds the optional per-user profile data owned by a User.
// Kept as a separate record so the credential fields stay in one place.
type UserProfile struct {
	UserID    string    `json:"user_id"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company"`
	Timezone  string    `json:"timezone"`
	AvatarURL string    `json:"avatar_url"`
	UpdatedAt time.Time `json:"updated_at"`
}
