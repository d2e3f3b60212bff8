package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lost-found-api/internal/application/match"
	"github.com/lost-found-api/internal/domain"
	"github.com/lost-found-api/internal/transport/http/middleware"
)

// MatchHandler handles match review endpoints.
type MatchHandler struct {
	svc match.Service
}

func NewMatchHandler(svc match.Service) *MatchHandler { return &MatchHandler{svc: svc} }

func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}
	matches, err := h.svc.ListForUser(r.Context(), ident.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, matches, "")
}

func (h *MatchHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}
	var req domain.UpdateMatchStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", "invalid request body")
		return
	}
	m, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status, ident.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, m, "match status updated")
}
