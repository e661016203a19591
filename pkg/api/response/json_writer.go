package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ashevelev/chatweb/pkg/logger"
)

// Envelope is the {success, message, data} body used by the auth
// endpoints.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type JSONWriter struct{}

// WriteJSON writes any payload with the given status code.
func (j *JSONWriter) WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding response", logger.Err(err))
	}
}

// WriteSuccess writes a success envelope.
func (j *JSONWriter) WriteSuccess(w http.ResponseWriter, statusCode int, message string, data any) {
	j.WriteJSON(w, statusCode, Envelope{Success: true, Message: message, Data: data})
}

// WriteError writes a failure envelope with a user-facing message.
func (j *JSONWriter) WriteError(w http.ResponseWriter, statusCode int, message string) {
	j.WriteJSON(w, statusCode, Envelope{Success: false, Message: message})
}
