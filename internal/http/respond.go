package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"smartexpense/internal/core"
	"smartexpense/internal/services"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps the service error taxonomy to HTTP statuses.
// Unexpected errors become an opaque 500; the detail stays in the logs.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, services.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, services.ErrWrongAnswer):
		writeError(w, http.StatusForbidden, "security answer does not match")
	case errors.Is(err, services.ErrExpenseNotFound):
		writeError(w, http.StatusNotFound, "expense not found")
	case errors.Is(err, services.ErrNotOwner):
		// Another user's record is indistinguishable from a missing one.
		writeError(w, http.StatusNotFound, "expense not found")
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrMissingDate),
		errors.Is(err, core.ErrMissingUser):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
