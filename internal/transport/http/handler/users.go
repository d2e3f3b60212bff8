package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lost-found-api/internal/application/user"
	"github.com/lost-found-api/internal/domain"
	"github.com/lost-found-api/internal/transport/http/middleware"
)

// UserHandler handles profile endpoints.
type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, p, "")
}

// UpsertMe creates or updates the caller's own profile.
func (h *UserHandler) UpsertMe(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}
	var req domain.UpsertProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", "invalid request body")
		return
	}
	u, err := h.svc.UpsertProfile(r.Context(), *ident, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, u, "profile saved")
}
