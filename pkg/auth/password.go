package auth

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost     = 12
	MinPasswordLen = 8
	MaxPasswordLen = 128
)

// WeakPasswordError holds the specific policy violations. Handlers return a
// generic message; the details stay server-side.
type WeakPasswordError struct {
	Reasons []string
}

func (e *WeakPasswordError) Error() string {
	if len(e.Reasons) == 0 {
		return "password does not meet strength requirements"
	}
	return "password does not meet strength requirements: " + strings.Join(e.Reasons, ", ")
}

// Common weak passwords to reject outright
var commonPasswords = map[string]bool{
	"password":     true,
	"password123":  true,
	"password123!": true,
	"12345678":     true,
	"qwertyuiop":   true,
	"letmein123":   true,
	"welcome123":   true,
	"passw0rd":     true,
	"sunshine1":    true,
	"trustno1!":    true,
}

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// ComparePassword checks password against a stored bcrypt hash. bcrypt's
// comparison is constant time; a mismatch returns an error, never a panic.
func ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword enforces the minimum-strength policy: length bounds plus
// at least one of each of upper, lower, digit, and symbol.
func ValidatePassword(password string) error {
	reasons := make([]string, 0)

	if len(password) < MinPasswordLen {
		reasons = append(reasons, fmt.Sprintf("must be at least %d characters", MinPasswordLen))
	}
	if len(password) > MaxPasswordLen {
		reasons = append(reasons, fmt.Sprintf("must be at most %d characters", MaxPasswordLen))
	}

	hasUpper := false
	hasLower := false
	hasDigit := false
	hasSpecial := false

	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	if !hasUpper {
		reasons = append(reasons, "must contain an uppercase letter")
	}
	if !hasLower {
		reasons = append(reasons, "must contain a lowercase letter")
	}
	if !hasDigit {
		reasons = append(reasons, "must contain a digit")
	}
	if !hasSpecial {
		reasons = append(reasons, "must contain a symbol")
	}

	if commonPasswords[strings.ToLower(password)] {
		reasons = append(reasons, "is too common")
	}

	if len(reasons) > 0 {
		return &WeakPasswordError{Reasons: reasons}
	}

	return nil
}
