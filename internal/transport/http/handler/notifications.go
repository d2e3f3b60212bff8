package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/lost-found-api/internal/application/notification"
	"github.com/lost-found-api/internal/transport/http/middleware"
)

// NotificationHandler handles notification endpoints.
type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// List returns the caller's notifications, optionally narrowed by ?is_read=true|false.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}
	var isRead *bool
	if raw := r.URL.Query().Get("is_read"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation failed", "is_read must be true or false")
			return
		}
		isRead = &v
	}
	notifications, err := h.svc.List(r.Context(), ident.UserID, isRead)
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, notifications, "")
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}
	n, err := h.svc.MarkRead(r.Context(), chi.URLParam(r, "id"), ident.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, n, "notification marked as read")
}
