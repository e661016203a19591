package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ashevelev/chatweb/pkg/api/response"
	"github.com/ashevelev/chatweb/pkg/domain"
	"github.com/ashevelev/chatweb/pkg/logger"
	"github.com/ashevelev/chatweb/pkg/render"
)

type ConversationService interface {
	Save(ctx context.Context, conv domain.Conversation) error
	Get(ctx context.Context, id, userID string) (*domain.Conversation, error)
	List(ctx context.Context, userID string) ([]domain.ConversationSummary, error)
	Update(ctx context.Context, id, userID string, patch domain.ConversationPatch) error
	Delete(ctx context.Context, id, userID string) error
}

type conversations struct {
	service ConversationService
	writer  response.JSONWriter
}

func NewConversations(service ConversationService) *conversations {
	return &conversations{service: service}
}

// userID resolves the caller's identity from the query string or the
// X-User-Id header.
func userID(r *http.Request) string {
	if id := r.URL.Query().Get("userId"); id != "" {
		return id
	}
	return r.Header.Get("X-User-Id")
}

func (c *conversations) List(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "Unauthorized - userId required", http.StatusUnauthorized)
		return
	}

	summaries, err := c.service.List(r.Context(), uid)
	if err != nil {
		slog.ErrorContext(r.Context(), "listing conversations failed", logger.Err(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	c.writer.WriteJSON(w, http.StatusOK, summaries)
}

func (c *conversations) Save(w http.ResponseWriter, r *http.Request) {
	var conv domain.Conversation
	if err := json.NewDecoder(r.Body).Decode(&conv); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if conv.UserID == "" {
		http.Error(w, "Unauthorized - userId required in body", http.StatusBadRequest)
		return
	}
	if conv.ID == "" || conv.Messages == nil {
		http.Error(w, "Missing required fields: id, messages", http.StatusBadRequest)
		return
	}

	if err := c.service.Save(r.Context(), conv); err != nil {
		slog.ErrorContext(r.Context(), "saving conversation failed", logger.Err(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	c.writer.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (c *conversations) Get(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "Unauthorized - userId required", http.StatusUnauthorized)
		return
	}

	conv, err := c.service.Get(r.Context(), r.PathValue("id"), uid)
	if err != nil {
		c.writeLookupError(w, r, err)
		return
	}

	c.writer.WriteJSON(w, http.StatusOK, conv)
}

func (c *conversations) Patch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
		domain.ConversationPatch
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	uid := body.UserID
	if uid == "" {
		uid = userID(r)
	}
	if uid == "" {
		http.Error(w, "Unauthorized - userId required", http.StatusUnauthorized)
		return
	}

	if err := c.service.Update(r.Context(), r.PathValue("id"), uid, body.ConversationPatch); err != nil {
		c.writeLookupError(w, r, err)
		return
	}

	c.writer.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (c *conversations) Delete(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "Unauthorized - userId required", http.StatusUnauthorized)
		return
	}

	if err := c.service.Delete(r.Context(), r.PathValue("id"), uid); err != nil {
		c.writeLookupError(w, r, err)
		return
	}

	c.writer.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Export renders the conversation transcript as HTML.
func (c *conversations) Export(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "Unauthorized - userId required", http.StatusUnauthorized)
		return
	}

	conv, err := c.service.Get(r.Context(), r.PathValue("id"), uid)
	if err != nil {
		c.writeLookupError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(render.TranscriptHTML(conv)); err != nil {
		slog.ErrorContext(r.Context(), "writing transcript", logger.Err(err))
	}
}

func (c *conversations) writeLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		http.Error(w, "Conversation not found", http.StatusNotFound)
		return
	}
	slog.ErrorContext(r.Context(), "conversation lookup failed", logger.Err(err))
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
