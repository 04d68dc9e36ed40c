// Package service exposes the ledger, billing, and cart operations over
// a JSON HTTP API. Handlers validate raw input, translate domain errors
// into status codes, and never let storage failures escape as panics.
package service

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

type errorResponse struct {
	Error string `json:"error"`
	// Issues carries per-line stock problems on checkout failures.
	Issues []string `json:"issues,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// validateItem rejects malformed product input before it reaches the
// ledger. Returns a human-readable problem or "".
func validateItem(name string, quantity int) string {
	if name == "" {
		return "product name must not be empty"
	}
	if quantity <= 0 {
		return "quantity must be a positive number"
	}
	return ""
}
