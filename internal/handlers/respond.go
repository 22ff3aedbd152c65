// Package handlers implements the HTTP handlers of the public read API and
// the admin API.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"folio/internal/store"
)

// maxJSONBody bounds ordinary JSON request bodies.
const maxJSONBody = 1 << 20

// writeJSON encodes payload as the response body.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("encode response failed", "error", err)
	}
}

// writeError sends {"error": message}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads a JSON body of at most limit bytes into dst. On failure
// it writes a 400 response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

// writeStoreError maps a PortfolioStore error to a response. Validation
// messages are returned to the client; everything else is only logged.
func writeStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, store.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrPersist):
		slog.Error(op+" failed", "error", err)
		writeError(w, http.StatusInsufficientStorage, "Portfolio could not be saved")
	default:
		slog.Error(op+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// writeInternal logs err and sends a generic 500.
func writeInternal(w http.ResponseWriter, op string, err error) {
	slog.Error(op+" failed", "error", err)
	writeError(w, http.StatusInternalServerError, "Internal Server Error")
}
