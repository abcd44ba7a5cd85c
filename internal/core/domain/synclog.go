package domain

import (
	"time"

	"github.com/google/uuid"
)

// Phase is one ordered stage of a sync run.
type Phase string

const (
	PhaseValidation  Phase = "validation"
	PhaseAdvertisers Phase = "advertisers"
	PhaseZones       Phase = "zones"
	PhaseCampaigns   Phase = "campaigns"
	PhasePlacements  Phase = "placements"
	PhaseCleanup     Phase = "cleanup"
)

// Phases lists all phases in execution order.
var Phases = []Phase{
	PhaseValidation, PhaseAdvertisers, PhaseZones,
	PhaseCampaigns, PhasePlacements, PhaseCleanup,
}

// Status values shared by sync logs, phases and operations.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusSuccess   = "success"
	StatusError     = "error"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusPartial   = "partial"
)

// SyncLog is the persisted top-level record of one sync run.
type SyncLog struct {
	ID        uuid.UUID
	NetworkID int
	// Type distinguishes full runs from dry runs.
	Type      string
	Status    string
	Progress  int // percent, 0..100
	Error     string
	StartTime time.Time
	EndTime   *time.Time
	Phases    []SyncPhase
}

// SyncPhase records one phase of a run.
type SyncPhase struct {
	Name      Phase
	Status    string
	Total     int
	Error     string
	StartTime time.Time
	EndTime   *time.Time
	Operations []SyncOperation
}

// SyncOperation records a single entity-sync attempt within a phase.
type SyncOperation struct {
	EntityType string
	EntityID   string
	EntityName string
	// Action is what the synchronizer did or tried to do: "create", "link"
	// or "migrate".
	Action       string
	Status       string
	ErrorCode    ErrorCode
	ErrorMessage string
	RetryCount   int
	RemoteID     *int
	Timestamp    time.Time
}
