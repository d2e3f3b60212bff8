package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lost-found-api/internal/domain"
	"github.com/rs/zerolog/log"
)

// Envelope is the response wrapper for every endpoint.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data interface{}, msg string) {
	writeJSON(w, status, Envelope{Success: true, Data: data, Message: msg})
}

func writeError(w http.ResponseWriter, status int, msg, detail string) {
	writeJSON(w, status, Envelope{Success: false, Message: msg, Error: detail})
}

// httpError maps a service error to its status code via the domain sentinels.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, "validation failed", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error", err.Error())
	}
}
