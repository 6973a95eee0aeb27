package rest

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fortuna/nbastats/internal/backfill"
	"github.com/fortuna/nbastats/internal/season"
	"github.com/fortuna/nbastats/internal/store"
	"github.com/fortuna/nbastats/internal/tabular"
)

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[api] encode response: %v", err)
	}
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, season.ErrInvalidFormat),
		errors.Is(err, season.ErrInvalidSeasonRange),
		errors.Is(err, backfill.ErrEmptyRange),
		errors.Is(err, tabular.ErrMissingKey),
		errors.Is(err, tabular.ErrUnhashableKey),
		errors.Is(err, tabular.ErrEmptyHeader),
		errors.Is(err, tabular.ErrInvalidTable):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
