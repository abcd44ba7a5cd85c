package httpadapter

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"adboard-sync/internal/core/domain"
)

// ProgressSnapshot is the live view of one run for dashboard polling.
type ProgressSnapshot struct {
	LogID         uuid.UUID    `json:"logId"`
	NetworkID     int          `json:"networkId"`
	TotalEntities int          `json:"totalEntities"`
	Processed     int          `json:"processed"`
	Succeeded     int          `json:"succeeded"`
	Failed        int          `json:"failed"`
	Phase         domain.Phase `json:"phase"`
	PhaseDone     int          `json:"phaseDone"`
	PhaseTotal    int          `json:"phaseTotal"`
	CurrentEntity string       `json:"currentEntity,omitempty"`
	Message       string       `json:"message,omitempty"`
	Done          bool         `json:"done"`
	Success       bool         `json:"success"`
	StartedAt     time.Time    `json:"startedAt"`
}

// ProgressTracker implements port.ProgressReporter with an in-memory map.
// Nothing is persisted; finished runs are kept briefly so a final poll can
// observe completion, then evicted.
type ProgressTracker struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]*ProgressSnapshot
}

// NewProgressTracker returns an empty tracker.
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{runs: make(map[uuid.UUID]*ProgressSnapshot)}
}

func (t *ProgressTracker) StartSync(logID uuid.UUID, networkID, totalEntities int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runs[logID] = &ProgressSnapshot{
		LogID:         logID,
		NetworkID:     networkID,
		TotalEntities: totalEntities,
		StartedAt:     time.Now(),
	}
}

func (t *ProgressTracker) UpdatePhaseProgress(logID uuid.UUID, phase domain.Phase, done, total int, currentName, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.runs[logID]
	if !ok {
		return
	}
	s.Phase = phase
	s.PhaseDone = done
	s.PhaseTotal = total
	s.CurrentEntity = currentName
	s.Message = message
}

func (t *ProgressTracker) UpdateEntityCounts(logID uuid.UUID, processed, succeeded, failed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.runs[logID]
	if !ok {
		return
	}
	s.Processed = processed
	s.Succeeded = succeeded
	s.Failed = failed
}

func (t *ProgressTracker) CompleteSync(logID uuid.UUID, success bool, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.runs[logID]
	if !ok {
		return
	}
	s.Done = true
	s.Success = success
	s.Message = message
	s.CurrentEntity = ""

	// Evict after a grace period so a final poll still sees the result.
	go func() {
		time.Sleep(time.Minute)
		t.mu.Lock()
		defer t.mu.Unlock()
		if cur, ok := t.runs[logID]; ok && cur.Done {
			delete(t.runs, logID)
		}
	}()
}

// Snapshot returns a copy of the current state of a run.
func (t *ProgressTracker) Snapshot(logID uuid.UUID) (ProgressSnapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.runs[logID]
	if !ok {
		return ProgressSnapshot{}, false
	}
	return *s, true
}
