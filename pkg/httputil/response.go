// Package httputil provides the JSON response helpers for stub-traffic
// error shapes. The management API has its own envelope writers in
// pkg/admin; stub traffic answers with flat {error, message, ...}
// objects, and these helpers keep that shape in one place.
package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// WriteJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes a JSON error response with the given status code.
// The body carries a machine-readable error code and a human-readable
// message.
func WriteError(w http.ResponseWriter, status int, errCode, message string) {
	WriteJSON(w, status, map[string]string{
		"error":   errCode,
		"message": message,
	})
}

// WriteNoMatch writes the 404 body for requests no endpoint claims,
// naming the method and path that went unmatched so callers can see at
// a glance which stub is missing.
func WriteNoMatch(w http.ResponseWriter, method, path string) {
	WriteJSON(w, http.StatusNotFound, map[string]string{
		"error":   "no_match",
		"message": fmt.Sprintf("No stub matched %s %s", method, path),
		"path":    path,
		"method":  method,
	})
}
