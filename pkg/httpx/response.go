package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform response body shape for all API endpoints.
// Data is omitted for responses that carry no payload.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteOK writes a successful enveloped response.
func WriteOK(w http.ResponseWriter, code int, message string, data any) {
	WriteJSON(w, code, Envelope{Status: code, Message: message, Data: data})
}

// WriteError writes an enveloped error response. The message is a stable
// snake_case key that clients can map to user-facing text.
func WriteError(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, Envelope{Status: code, Message: message})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
