package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("CorrectHorse1!")
	require.NoError(t, err)
	assert.NotEqual(t, "CorrectHorse1!", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))

	assert.NoError(t, ComparePassword(hash, "CorrectHorse1!"))
	assert.Error(t, ComparePassword(hash, "WrongHorse1!"))
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	first, err := HashPassword("CorrectHorse1!")
	require.NoError(t, err)
	second, err := HashPassword("CorrectHorse1!")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
		reason   string
	}{
		{"valid", "CorrectHorse1!", false, ""},
		{"too short", "Ab1!", true, "at least 8 characters"},
		{"too long", strings.Repeat("Ab1!", 40), true, "at most 128 characters"},
		{"no uppercase", "correcthorse1!", true, "uppercase letter"},
		{"no lowercase", "CORRECTHORSE1!", true, "lowercase letter"},
		{"no digit", "CorrectHorse!", true, "digit"},
		{"no symbol", "CorrectHorse1", true, "symbol"},
		{"common password", "Password123!", true, "too common"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			var weakErr *WeakPasswordError
			require.ErrorAs(t, err, &weakErr)
			assert.Contains(t, weakErr.Error(), tt.reason)
		})
	}
}

func TestValidatePassword_CollectsAllReasons(t *testing.T) {
	err := ValidatePassword("abc")

	var weakErr *WeakPasswordError
	require.True(t, errors.As(err, &weakErr))
	assert.Len(t, weakErr.Reasons, 4)
}
