package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
)

// networkGuard serializes sync runs per network. Concurrent runs for the
// same network are unsafe (remote duplicate-check-then-create is not
// atomic), and this handler is the only caller in this service.
type networkGuard struct {
	mu      sync.Mutex
	running map[int]bool
}

func (g *networkGuard) tryAcquire(networkID int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running == nil {
		g.running = make(map[int]bool)
	}
	if g.running[networkID] {
		return false
	}
	g.running[networkID] = true
	return true
}

func (g *networkGuard) release(networkID int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, networkID)
}

// handleSyncAll runs a full sync for the network and returns the report.
// The run is synchronous; the live progress endpoint can be polled with
// the log id from a previous response, or the dashboard can watch the
// persisted log. A run already in progress for the network yields
// HTTP 409. Partial failure still returns HTTP 200 with success=false in
// the body.
func (h *Handler) handleSyncAll(w http.ResponseWriter, r *http.Request) {
	networkID, err := strconv.Atoi(chi.URLParam(r, "networkID"))
	if err != nil {
		http.Error(w, "invalid network id", http.StatusBadRequest)
		return
	}
	if !h.guard.tryAcquire(networkID) {
		http.Error(w, "sync already running for this network", http.StatusConflict)
		return
	}
	defer h.guard.release(networkID)

	report, err := h.svc.SyncAll(r.Context(), networkID)
	if err != nil {
		h.logger.Error("sync run error", slog.Int("network_id", networkID), slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.logger, report)
}

// handleDryRun performs the read-only pre-flight check for the network.
func (h *Handler) handleDryRun(w http.ResponseWriter, r *http.Request) {
	networkID, err := strconv.Atoi(chi.URLParam(r, "networkID"))
	if err != nil {
		http.Error(w, "invalid network id", http.StatusBadRequest)
		return
	}
	report, err := h.svc.DryRun(r.Context(), networkID)
	if err != nil {
		h.logger.Error("dry run error", slog.Int("network_id", networkID), slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.logger, report)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// encoding should rarely fail; log and send generic error
		logger.Error("encode response error", slog.Any("error", err))
	}
}
