package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/harborcrm/harbor/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoginGuard(store LoginGuardStore) *LoginGuard {
	return NewLoginGuard(store, slog.Default(), 5, 30*time.Minute)
}

func TestLoginGuard_CheckEligible_Unlocked(t *testing.T) {
	guard := newTestLoginGuard(&MockUserStore{})
	user := NewTestUser("user_1", "a@example.com", "A")

	assert.NoError(t, guard.CheckEligible(user))
}

func TestLoginGuard_CheckEligible_Locked(t *testing.T) {
	guard := newTestLoginGuard(&MockUserStore{})
	user := NewTestUserLocked("user_1", "a@example.com", "A")

	err := guard.CheckEligible(user)

	var lockedErr *models.AccountLockedError
	require.ErrorAs(t, err, &lockedErr)
	assert.Equal(t, *user.LockedUntil, lockedErr.Until)
}

func TestLoginGuard_CheckEligible_LockExpired(t *testing.T) {
	guard := newTestLoginGuard(&MockUserStore{})
	user := NewTestUser("user_1", "a@example.com", "A")
	past := time.Now().Add(-1 * time.Minute)
	user.LockedUntil = &past
	user.LoginFailureCount = 5

	assert.NoError(t, guard.CheckEligible(user), "an elapsed lock no longer blocks login")
}

func TestLoginGuard_RecordFailure_PassesPolicy(t *testing.T) {
	var gotThreshold int
	var gotWindow time.Duration
	store := &MockUserStore{
		IncrementLoginFailuresFunc: func(ctx context.Context, userID string, threshold int, lockWindow time.Duration) (int, *time.Time, error) {
			gotThreshold = threshold
			gotWindow = lockWindow
			return 1, nil, nil
		},
	}

	guard := newTestLoginGuard(store)
	user := NewTestUser("user_1", "a@example.com", "A")

	require.NoError(t, guard.RecordFailure(context.Background(), user))
	assert.Equal(t, 5, gotThreshold)
	assert.Equal(t, 30*time.Minute, gotWindow)
}

func TestLoginGuard_RecordFailure_StoreError(t *testing.T) {
	store := &MockUserStore{
		IncrementLoginFailuresFunc: func(ctx context.Context, userID string, threshold int, lockWindow time.Duration) (int, *time.Time, error) {
			return 0, nil, models.ErrInternalServer
		},
	}

	guard := newTestLoginGuard(store)
	err := guard.RecordFailure(context.Background(), NewTestUser("user_1", "a@example.com", "A"))

	assert.ErrorIs(t, err, models.ErrInternalServer)
}

func TestLoginGuard_RecordSuccess(t *testing.T) {
	reset := false
	store := &MockUserStore{
		RecordLoginSuccessFunc: func(ctx context.Context, userID string) error {
			reset = true
			return nil
		},
	}

	guard := newTestLoginGuard(store)

	require.NoError(t, guard.RecordSuccess(context.Background(), NewTestUser("user_1", "a@example.com", "A")))
	assert.True(t, reset)
}
