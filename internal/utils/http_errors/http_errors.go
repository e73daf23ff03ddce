// Package httperrors holds the JSON response writers shared by all
// handlers.
package httperrors

import (
	"encoding/json"
	"net/http"
)

// WriteJSONError writes {"error": message} with the given status.
func WriteJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// WriteJSON writes an arbitrary payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
