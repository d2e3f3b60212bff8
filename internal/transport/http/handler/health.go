package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// StorageChecker reports whether the image bucket is reachable.
type StorageChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles health-check endpoints.
type HealthHandler struct {
	storage StorageChecker
}

// NewHealthHandler builds the handler. A nil storage disables the storage action.
func NewHealthHandler(storage StorageChecker) *HealthHandler {
	return &HealthHandler{storage: storage}
}

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	switch action := chi.URLParam(r, "action"); action {
	case "ping":
		writeData(w, http.StatusOK, nil, "pong")
	case "storage":
		h.checkStorage(w, r)
	default:
		writeError(w, http.StatusBadRequest, "unknown action", action)
	}
}

func (h *HealthHandler) checkStorage(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeError(w, http.StatusNotFound, "storage check not configured", "")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := h.storage.HealthCheck(ctx); err != nil {
		log.Warn().Err(err).Msg("storage health check failed")
		writeError(w, http.StatusServiceUnavailable, "storage unavailable", err.Error())
		return
	}
	writeData(w, http.StatusOK, nil, "storage ok")
}
