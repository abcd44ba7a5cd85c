package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"adboard-sync/internal/core/domain"
)

// SyncUseCase is the primary port into the sync engine. Runs for the same
// network must be serialized by the caller; the engine does not lock.
type SyncUseCase interface {
	// SyncAll reconciles every unsynced entity of the network with the
	// remote platform, in dependency order. Partial success is normal:
	// the returned report carries per-entity outcomes and the error is
	// non-nil only when the run could not start at all.
	SyncAll(ctx context.Context, networkID int) (*SyncReport, error)

	// DryRun inspects unsynced entities of the network without performing
	// any remote mutation and reports what a full run would reject.
	DryRun(ctx context.Context, networkID int) (*DryRunReport, error)
}

// SyncResult is the immutable outcome of one entity-sync attempt. Code is
// empty on a plain create success, LINKED_DUPLICATE when the entity was
// linked to an existing remote record, and a failure code otherwise.
type SyncResult struct {
	Success    bool             `json:"success"`
	Entity     *RemoteEntity    `json:"entity,omitempty"`
	Error      string           `json:"error,omitempty"`
	Code       domain.ErrorCode `json:"code,omitempty"`
	RetryCount int              `json:"retryCount"`
	Retryable  bool             `json:"retryable"`
}

// SyncReport aggregates one orchestration run. Success is true iff
// FailedSyncs is zero; a failed run can still have synced many entities.
type SyncReport struct {
	LogID           uuid.UUID     `json:"logId"`
	NetworkID       int           `json:"networkId"`
	TotalEntities   int           `json:"totalEntities"`
	SuccessfulSyncs int           `json:"successfulSyncs"`
	FailedSyncs     int           `json:"failedSyncs"`
	Results         []SyncResult  `json:"results"`
	Errors          []string      `json:"errors"`
	StartTime       time.Time     `json:"startTime"`
	EndTime         time.Time     `json:"endTime"`
	Duration        time.Duration `json:"duration"`
	Success         bool          `json:"success"`
}

// DryRunReport is the outcome of a read-only pre-flight check. Valid is
// true iff Errors is empty; warnings never affect validity.
type DryRunReport struct {
	Valid    bool     `json:"valid"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
	// Per-kind name collisions against the remote platform.
	AdvertiserConflicts []string `json:"advertiserConflicts"`
	ZoneConflicts       []string `json:"zoneConflicts"`
	CampaignConflicts   []string `json:"campaignConflicts"`
	// Dependency gaps: campaigns with unresolved advertisers, placements
	// referencing unsynced zones or unknown advertisements.
	MissingDependencies []string `json:"missingDependencies"`
}
