package httpadapter

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adboard-sync/internal/core/domain"
	"adboard-sync/internal/core/port"
)

type stubSyncUseCase struct {
	mu      sync.Mutex
	started chan struct{}
	release chan struct{}
	report  *port.SyncReport
	dryRun  *port.DryRunReport
	runs    int
}

func (s *stubSyncUseCase) SyncAll(_ context.Context, networkID int) (*port.SyncReport, error) {
	s.mu.Lock()
	s.runs++
	s.mu.Unlock()
	if s.started != nil {
		s.started <- struct{}{}
		<-s.release
	}
	r := *s.report
	r.NetworkID = networkID
	return &r, nil
}

func (s *stubSyncUseCase) DryRun(context.Context, int) (*port.DryRunReport, error) {
	return s.dryRun, nil
}

type stubLogReader struct {
	log  *domain.SyncLog
	list []domain.SyncLog
}

func (s *stubLogReader) GetSyncLog(context.Context, uuid.UUID) (*domain.SyncLog, error) {
	return s.log, nil
}

func (s *stubLogReader) ListSyncLogs(context.Context, int, int) ([]domain.SyncLog, error) {
	return s.list, nil
}

func testHandler(svc port.SyncUseCase, logs port.SyncLogReader, tracker *ProgressTracker) *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if tracker == nil {
		tracker = NewProgressTracker()
	}
	return NewHandler(svc, logs, tracker, logger)
}

func TestHandleSyncAll(t *testing.T) {
	svc := &stubSyncUseCase{report: &port.SyncReport{Success: true, SuccessfulSyncs: 2, TotalEntities: 2}}
	h := testHandler(svc, &stubLogReader{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/networks/7/sync", nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var report port.SyncReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.True(t, report.Success)
	assert.Equal(t, 7, report.NetworkID)
}

func TestHandleSyncAllRejectsBadNetworkID(t *testing.T) {
	h := testHandler(&stubSyncUseCase{report: &port.SyncReport{}}, &stubLogReader{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/networks/seven/sync", nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// A second sync for the same network while one is running yields 409; a
// different network is unaffected.
func TestHandleSyncAllSerializesPerNetwork(t *testing.T) {
	svc := &stubSyncUseCase{
		report:  &port.SyncReport{Success: true},
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	h := testHandler(svc, &stubLogReader{}, nil)

	firstDone := make(chan int, 1)
	go func() {
		rec := httptest.NewRecorder()
		h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/networks/7/sync", nil))
		firstDone <- rec.Code
	}()
	<-svc.started

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/networks/7/sync", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	otherDone := make(chan int, 1)
	go func() {
		rec := httptest.NewRecorder()
		h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/networks/8/sync", nil))
		otherDone <- rec.Code
	}()
	<-svc.started

	close(svc.release)
	assert.Equal(t, http.StatusOK, <-firstDone)
	assert.Equal(t, http.StatusOK, <-otherDone)
}

func TestHandleDryRun(t *testing.T) {
	svc := &stubSyncUseCase{dryRun: &port.DryRunReport{Valid: false, Errors: []string{"zone \"taken\" already exists remotely"}}}
	h := testHandler(svc, &stubLogReader{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/networks/7/sync/dry-run", nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var report port.DryRunReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.False(t, report.Valid)
	require.Len(t, report.Errors, 1)
}

func TestHandleGetSyncLog(t *testing.T) {
	logID := uuid.New()
	reader := &stubLogReader{log: &domain.SyncLog{ID: logID, NetworkID: 7, Status: domain.StatusCompleted}}
	h := testHandler(&stubSyncUseCase{}, reader, nil)

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sync/logs/"+logID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sync/logs/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	reader.log = nil
	rec = httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sync/logs/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleListSyncLogs(t *testing.T) {
	reader := &stubLogReader{list: []domain.SyncLog{{ID: uuid.New(), NetworkID: 7}}}
	h := testHandler(&stubSyncUseCase{}, reader, nil)

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/networks/7/sync/logs?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/networks/7/sync/logs?limit=-1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetProgress(t *testing.T) {
	tracker := NewProgressTracker()
	logID := uuid.New()
	tracker.StartSync(logID, 7, 10)
	tracker.UpdatePhaseProgress(logID, domain.PhaseZones, 3, 4, "leaderboard", "syncing")
	tracker.UpdateEntityCounts(logID, 5, 4, 1)

	h := testHandler(&stubSyncUseCase{}, &stubLogReader{}, tracker)

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sync/progress/"+logID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap ProgressSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, domain.PhaseZones, snap.Phase)
	assert.Equal(t, 3, snap.PhaseDone)
	assert.Equal(t, 5, snap.Processed)
	assert.Equal(t, 1, snap.Failed)
	assert.False(t, snap.Done)

	rec = httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sync/progress/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProgressTrackerCompleteKeepsSnapshot(t *testing.T) {
	tracker := NewProgressTracker()
	logID := uuid.New()
	tracker.StartSync(logID, 7, 2)
	tracker.CompleteSync(logID, true, "synced 2 of 2 entities")

	snap, ok := tracker.Snapshot(logID)
	require.True(t, ok, "a completed run stays pollable for a grace period")
	assert.True(t, snap.Done)
	assert.True(t, snap.Success)
	assert.WithinDuration(t, time.Now(), snap.StartedAt, time.Minute)
}
