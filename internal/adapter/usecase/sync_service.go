package usecase

import (
	"context"
	"log/slog"
	"time"

	"adboard-sync/internal/config/configs"
	"adboard-sync/internal/core/port"
)

// SyncService reconciles locally created entities with the remote ad
// platform. It implements port.SyncUseCase. One instance is constructed at
// startup and shared; it holds no per-run state, but concurrent runs for
// the same network are unsafe and must be serialized by the caller.
type SyncService struct {
	store    port.EntityStore
	platform port.PlatformClient
	audit    port.AuditReporter
	progress port.ProgressReporter
	logger   *slog.Logger

	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration

	// now and sleep are swappable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSyncService creates the sync engine with the provided collaborators
// and retry tuning.
func NewSyncService(
	store port.EntityStore,
	platform port.PlatformClient,
	audit port.AuditReporter,
	progress port.ProgressReporter,
	logger *slog.Logger,
	cfg configs.Sync,
) *SyncService {
	s := &SyncService{
		store:       store,
		platform:    platform,
		audit:       audit,
		progress:    progress,
		logger:      logger,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		maxDelay:    cfg.MaxDelay,
		now:         time.Now,
		sleep:       sleepCtx,
	}
	if s.maxAttempts < 1 {
		s.maxAttempts = 1
	}
	return s
}

// sleepCtx waits for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
