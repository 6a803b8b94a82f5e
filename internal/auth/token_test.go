package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborcrm/harbor/internal/models"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

func newTestTokenManager() *TokenManager {
	return NewTokenManager(testSecret, 15*time.Minute, 7*24*time.Hour)
}

func TestTokenManager_AccessTokenRoundTrip(t *testing.T) {
	tm := newTestTokenManager()

	token, err := tm.GenerateAccessToken("user-1", "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.TokenTypeAccess, claims.Type)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManager_RefreshTokenType(t *testing.T) {
	tm := newTestTokenManager()

	token, err := tm.GenerateRefreshToken("user-1", "alice@example.com")
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.TokenTypeRefresh, claims.Type)
}

func TestTokenManager_UniqueTokenIDs(t *testing.T) {
	tm := newTestTokenManager()

	first, err := tm.GenerateRefreshToken("user-1", "alice@example.com")
	require.NoError(t, err)
	second, err := tm.GenerateRefreshToken("user-1", "alice@example.com")
	require.NoError(t, err)

	firstClaims, err := tm.ValidateToken(first)
	require.NoError(t, err)
	secondClaims, err := tm.ValidateToken(second)
	require.NoError(t, err)

	assert.NotEqual(t, firstClaims.ID, secondClaims.ID)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	tm := newTestTokenManager()

	for _, token := range []string{"", "not-a-jwt", "aaa.bbb.ccc"} {
		_, err := tm.ValidateToken(token)
		assert.ErrorIs(t, err, models.ErrInvalidToken)
	}
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	tm := newTestTokenManager()
	other := NewTokenManager("a-completely-different-secret-value-here", 15*time.Minute, 7*24*time.Hour)

	token, err := other.GenerateAccessToken("user-1", "alice@example.com")
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	tm := NewTokenManager(testSecret, -1*time.Minute, 7*24*time.Hour)

	token, err := tm.GenerateAccessToken("user-1", "alice@example.com")
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestTokenManager_RefreshTokenExpiryAccessor(t *testing.T) {
	tm := newTestTokenManager()
	assert.Equal(t, 7*24*time.Hour, tm.RefreshTokenExpiry())
}
