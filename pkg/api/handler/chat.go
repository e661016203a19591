package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ashevelev/chatweb/pkg/domain"
	"github.com/ashevelev/chatweb/pkg/logger"
)

type ChatService interface {
	StreamResponse(ctx context.Context, userID string, messages []domain.Message, sink func(string) error) error
}

type chat struct {
	service ChatService
}

func NewChat(service ChatService) *chat {
	return &chat{service: service}
}

type chatRequest struct {
	Messages       []domain.Message `json:"messages"`
	UserID         string           `json:"userId"`
	ConversationID string           `json:"conversationId"`
}

// Respond streams the assistant's reply as a plain text body. Provider
// failures never reach the client: the service degrades to a canned
// response.
func (c *chat) Respond(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}

	if req.UserID == "" {
		http.Error(w, "User ID is required", http.StatusBadRequest)
		return
	}
	if len(req.Messages) == 0 {
		http.Error(w, "Messages array is required and cannot be empty", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	flusher, canFlush := w.(http.Flusher)
	wrote := false

	err := c.service.StreamResponse(r.Context(), req.UserID, req.Messages, func(delta string) error {
		if _, err := w.Write([]byte(delta)); err != nil {
			return err
		}
		wrote = true
		if canFlush {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "chat response failed", logger.Err(err))
		if !wrote {
			http.Error(w, "Error: Internal Server Error", http.StatusInternalServerError)
		}
	}
}
