package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"log/slog"

	"adboard-sync/internal/core/port"
)

// Handler contains dependencies and routes. It is an inbound adapter for
// HTTP. It holds the sync use case, the persisted log reader and the live
// progress tracker, plus a logger for structured logging. Routes are
// registered on a chi.Router for convenient method handling.
type Handler struct {
	svc      port.SyncUseCase
	logs     port.SyncLogReader
	progress *ProgressTracker
	logger   *slog.Logger
	router   chi.Router

	guard networkGuard
}

// NewHandler creates a handler with all routes configured. The returned
// Handler registers handlers for each endpoint on a new chi.Router.
func NewHandler(svc port.SyncUseCase, logs port.SyncLogReader, progress *ProgressTracker, logger *slog.Logger) *Handler {
	h := &Handler{svc: svc, logs: logs, progress: progress, logger: logger}
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/networks/{networkID}/sync", h.handleSyncAll)
		r.Post("/networks/{networkID}/sync/dry-run", h.handleDryRun)
		r.Get("/networks/{networkID}/sync/logs", h.handleListSyncLogs)
		r.Get("/sync/logs/{logID}", h.handleGetSyncLog)
		r.Get("/sync/progress/{logID}", h.handleGetProgress)
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}
