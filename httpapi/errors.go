package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/poiesic/catalogit/core"
	"github.com/poiesic/catalogit/storage"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message, Details: details})
}

// writeDomainError maps a catalog failure to a client-visible status:
// missing records become 404, rejected input becomes 400, and everything
// else is an opaque 500.
func (a *App) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
	case errors.Is(err, core.ErrInvalidProduct), errors.Is(err, storage.ErrInvalidQuery):
		WriteJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
	default:
		a.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
			"err", err,
		)
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", "")
	}
}
