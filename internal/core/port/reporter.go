package port

import (
	"context"

	"github.com/google/uuid"

	"adboard-sync/internal/core/domain"
)

// AuditReporter persists the hierarchical log of a sync run. The engine
// pushes events; it does not own the records. Reporter failures must not
// abort a run, so implementations should be tolerant and callers log-and-
// continue on error.
type AuditReporter interface {
	// CreateSyncLog opens a new run record and returns its id. Type is
	// "full" or "dry_run".
	CreateSyncLog(ctx context.Context, networkID int, syncType string) (uuid.UUID, error)
	StartPhase(ctx context.Context, logID uuid.UUID, phase domain.Phase, total int) error
	LogOperation(ctx context.Context, logID uuid.UUID, phase domain.Phase, op domain.SyncOperation) error
	CompletePhase(ctx context.Context, logID uuid.UUID, phase domain.Phase, status, errorSummary string) error
	CompleteSyncLog(ctx context.Context, logID uuid.UUID, status, errorSummary string) error
	// UpdateProgress records overall run progress as a percentage.
	UpdateProgress(ctx context.Context, logID uuid.UUID, pct int) error
}

// SyncLogReader retrieves persisted run records for display.
type SyncLogReader interface {
	GetSyncLog(ctx context.Context, logID uuid.UUID) (*domain.SyncLog, error)
	ListSyncLogs(ctx context.Context, networkID int, limit int) ([]domain.SyncLog, error)
}

// ProgressReporter receives ephemeral live-progress events for display.
// Implementations must not block; delivery is best effort and nothing is
// persisted.
type ProgressReporter interface {
	StartSync(logID uuid.UUID, networkID, totalEntities int)
	UpdatePhaseProgress(logID uuid.UUID, phase domain.Phase, done, total int, currentName, message string)
	UpdateEntityCounts(logID uuid.UUID, processed, succeeded, failed int)
	CompleteSync(logID uuid.UUID, success bool, message string)
}
