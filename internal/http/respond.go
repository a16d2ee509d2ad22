package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"equi/internal/models"
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses: semantic validation
// failures are 422, missing entities 404, link conflicts 409, anything
// unrecognized 500. Malformed requests (bad JSON, missing params) never
// reach here; handlers reject those with 400 directly.
func writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, models.ErrInvalid):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrSubscriptionNotFound),
		errors.Is(err, models.ErrSplitNotFound),
		errors.Is(err, models.ErrMemberIndex):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrSubscriptionLinked):
		status = http.StatusConflict
	default:
		slog.Error("Request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
