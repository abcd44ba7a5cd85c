package httpadapter

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// handleGetSyncLog returns the persisted hierarchical record of one run.
// Unknown ids result in HTTP 404.
func (h *Handler) handleGetSyncLog(w http.ResponseWriter, r *http.Request) {
	logID, err := uuid.Parse(chi.URLParam(r, "logID"))
	if err != nil {
		http.Error(w, "invalid log id", http.StatusBadRequest)
		return
	}
	log, err := h.logs.GetSyncLog(r.Context(), logID)
	if err != nil {
		h.logger.Error("get sync log error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if log == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, h.logger, log)
}

// handleListSyncLogs returns recent runs of a network, newest first. The
// optional `limit` query parameter caps the result count.
func (h *Handler) handleListSyncLogs(w http.ResponseWriter, r *http.Request) {
	networkID, err := strconv.Atoi(chi.URLParam(r, "networkID"))
	if err != nil {
		http.Error(w, "invalid network id", http.StatusBadRequest)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
	}
	logs, err := h.logs.ListSyncLogs(r.Context(), networkID, limit)
	if err != nil {
		h.logger.Error("list sync logs error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.logger, logs)
}

// handleGetProgress returns the live progress of a run, or HTTP 404 once
// it has been evicted (progress is ephemeral; completed runs live in the
// persisted log).
func (h *Handler) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	logID, err := uuid.Parse(chi.URLParam(r, "logID"))
	if err != nil {
		http.Error(w, "invalid log id", http.StatusBadRequest)
		return
	}
	snap, ok := h.progress.Snapshot(logID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, h.logger, snap)
}
