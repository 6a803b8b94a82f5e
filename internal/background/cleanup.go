package background

import (
	"context"
	"log/slog"
	"time"
)

// SecurityStateStore clears expired OTP, lockout, and reset state in bulk.
type SecurityStateStore interface {
	ClearExpiredSecurityState(ctx context.Context) (int64, error)
}

// CleanupManager periodically clears expired OTP codes, elapsed login
// locks, and dead password reset tokens. The auth flows already treat
// expired state as absent, so this is hygiene, not correctness.
type CleanupManager struct {
	store    SecurityStateStore
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(store SecurityStateStore, logger *slog.Logger, interval time.Duration) *CleanupManager {
	return &CleanupManager{
		store:    store,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rowsCleared, err := cm.store.ClearExpiredSecurityState(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to clear expired security state", slog.Any("error", err))
		return
	}

	if rowsCleared > 0 {
		cm.logger.Info("expired security state cleared", slog.Int64("rows", rowsCleared))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
