// Package response writes the API's JSON envelope. Every handler and
// middleware that talks to a client goes through it so success and error
// bodies stay uniform across the surface.
package response

import (
	"encoding/json"
	"net/http"
	"time"
)

// maxMessageLength caps error messages sent to clients
const maxMessageLength = 200

// JSON sends a success envelope with the given payload
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	body := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// Error sends an error envelope. Messages are truncated so internal detail
// cannot leak to clients through overly long error strings.
func Error(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(errorBody(errorType, message)); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ErrorBody returns the error envelope as a string, for wrappers like
// http.TimeoutHandler that take a prebuilt body instead of a writer.
func ErrorBody(errorType, message string) string {
	return string(errorBody(errorType, message))
}

func errorBody(errorType, message string) []byte {
	body, err := json.Marshal(map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   truncate(message),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return []byte(`{"success":false,"error":"Internal Server Error"}`)
	}
	return body
}

func truncate(message string) string {
	if len(message) > maxMessageLength {
		return message[:maxMessageLength] + "..."
	}
	return message
}
