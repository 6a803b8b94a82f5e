package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/harborcrm/harbor/internal/models"
)

// LoginGuardStore is the slice of the credential store the guard mutates.
type LoginGuardStore interface {
	IncrementLoginFailures(ctx context.Context, userID string, threshold int, lockWindow time.Duration) (int, *time.Time, error)
	RecordLoginSuccess(ctx context.Context, userID string) error
}

// LoginGuard enforces failed-attempt counting and temporary lockout,
// independent of password correctness. State machine:
// Normal -> (threshold failures) -> Locked -> (window elapses or success) -> Normal.
// Lock expiry is evaluated lazily against the clock on the next check.
type LoginGuard struct {
	store      LoginGuardStore
	logger     *slog.Logger
	threshold  int
	lockWindow time.Duration
	now        func() time.Time
}

// NewLoginGuard creates a new LoginGuard.
func NewLoginGuard(store LoginGuardStore, logger *slog.Logger, threshold int, lockWindow time.Duration) *LoginGuard {
	return &LoginGuard{
		store:      store,
		logger:     logger,
		threshold:  threshold,
		lockWindow: lockWindow,
		now:        time.Now,
	}
}

// CheckEligible fails with AccountLockedError while a lock is in effect.
func (g *LoginGuard) CheckEligible(user *models.User) error {
	if user.IsLocked(g.now()) {
		return &models.AccountLockedError{Until: *user.LockedUntil}
	}
	return nil
}

// RecordFailure applies an atomic increment at the store. The counter caps
// at the threshold; reaching it sets the lock window.
func (g *LoginGuard) RecordFailure(ctx context.Context, user *models.User) error {
	count, lockedUntil, err := g.store.IncrementLoginFailures(ctx, user.ID, g.threshold, g.lockWindow)
	if err != nil {
		g.logger.Error("failed to record login failure",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return models.ErrInternalServer
	}

	if lockedUntil != nil && count >= g.threshold {
		g.logger.Warn("account locked after repeated failures",
			slog.String("user_id", user.ID),
			slog.Time("locked_until", *lockedUntil))
	}

	return nil
}

// RecordSuccess resets the failure counter and clears any lock.
func (g *LoginGuard) RecordSuccess(ctx context.Context, user *models.User) error {
	if err := g.store.RecordLoginSuccess(ctx, user.ID); err != nil {
		g.logger.Error("failed to record login success",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}
