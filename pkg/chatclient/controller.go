// Package chatclient implements the client-side chat controller: it
// owns the active conversation, appends the user's message
// optimistically, calls the completion endpoint and persists the
// updated transcript.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ashevelev/chatweb/pkg/domain"
)

type Controller struct {
	baseURL string
	hc      *http.Client
	user    domain.User

	mu             sync.Mutex
	conversationID string
	messages       []domain.Message
	conversations  []domain.ConversationSummary
	busy           bool
	lastErr        string
}

// NewController builds a controller for one authenticated user. A nil
// client falls back to http.DefaultClient.
func NewController(baseURL string, hc *http.Client, user domain.User) *Controller {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Controller{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      hc,
		user:    user,
	}
}

// Send appends the user's message, requests a completion and persists
// the updated transcript. Empty content with no attachments is a no-op.
// On failure the optimistically appended user message stays in place.
func (c *Controller) Send(ctx context.Context, content string, attachments []domain.Attachment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.send(ctx, content, attachments)
}

func (c *Controller) send(ctx context.Context, content string, attachments []domain.Attachment) (err error) {
	if strings.TrimSpace(content) == "" && len(attachments) == 0 {
		return nil
	}

	if c.user.ID == "" {
		c.lastErr = "User not found. Please refresh the page."
		return domain.ErrUnauthorized
	}

	c.lastErr = ""
	c.busy = true
	defer func() {
		c.busy = false
		if err != nil && c.lastErr == "" {
			c.lastErr = err.Error()
		}
	}()

	// Lazily create a conversation for the first message.
	if c.conversationID == "" {
		c.conversationID = uuid.NewString()
	}

	userMessage := domain.Message{
		ID:          uuid.NewString(),
		Role:        domain.RoleUser,
		Content:     enrichContent(content, attachments),
		Timestamp:   time.Now(),
		Attachments: attachments,
	}

	// Optimistic append: kept even if the completion call fails.
	c.messages = append(c.messages, userMessage)

	reply, err := c.requestCompletion(ctx)
	if err != nil {
		return err
	}

	c.messages = append(c.messages, domain.Message{
		ID:        uuid.NewString(),
		Role:      domain.RoleAssistant,
		Content:   reply,
		Timestamp: time.Now(),
	})

	if err := c.saveConversation(ctx); err != nil {
		return err
	}
	return c.refreshConversations(ctx)
}

// Edit truncates the transcript at the edited message and regenerates
// everything after it. Empty content is a no-op.
func (c *Controller) Edit(ctx context.Context, messageID, newContent string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.TrimSpace(newContent) == "" {
		return nil
	}

	index := -1
	for i, m := range c.messages {
		if m.ID == messageID {
			index = i
			break
		}
	}
	if index == -1 {
		return nil
	}

	attachments := c.messages[index].Attachments
	c.messages = c.messages[:index]

	return c.send(ctx, strings.TrimSpace(newContent), attachments)
}

// Regenerate re-sends the most recent user message, dropping it and
// everything after it first.
func (c *Controller) Regenerate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	index := -1
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == domain.RoleUser {
			index = i
			break
		}
	}
	if index == -1 {
		return nil
	}

	last := c.messages[index]
	c.messages = c.messages[:index]

	// The content already carries the attachment markup from the
	// original send; enriching again would duplicate it.
	return c.send(ctx, last.Content, nil)
}

// LoadConversation replaces the transcript with the stored one. Loading
// the already-active conversation is a no-op; a failed fetch leaves the
// prior state untouched.
func (c *Controller) LoadConversation(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id == c.conversationID {
		return nil
	}

	if c.user.ID == "" {
		c.lastErr = "User not found. Please refresh the page."
		return domain.ErrUnauthorized
	}

	c.lastErr = ""

	u := fmt.Sprintf("%s/conversations/%s?userId=%s", c.baseURL, id, c.user.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		c.lastErr = "Failed to load conversation. Please try again."
		return err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		c.lastErr = "Failed to load conversation. Please try again."
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.lastErr = "Failed to load conversation. Please try again."
		return fmt.Errorf("loading conversation: status %d", resp.StatusCode)
	}

	var conv domain.Conversation
	if err := json.NewDecoder(resp.Body).Decode(&conv); err != nil {
		c.lastErr = "Failed to load conversation. Please try again."
		return err
	}

	c.messages = conv.Messages
	c.conversationID = id
	return nil
}

// NewConversation starts a fresh empty conversation and returns its id.
func (c *Controller) NewConversation(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.newConversation(ctx)
}

func (c *Controller) newConversation(ctx context.Context) (string, error) {
	c.conversationID = uuid.NewString()
	c.messages = nil
	c.lastErr = ""

	if err := c.refreshConversations(ctx); err != nil {
		return c.conversationID, err
	}
	return c.conversationID, nil
}

// DeleteConversation removes a conversation remotely. Deleting the
// active conversation activates a fresh empty one.
func (c *Controller) DeleteConversation(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user.ID == "" {
		c.lastErr = "User not found. Please refresh the page."
		return domain.ErrUnauthorized
	}

	c.lastErr = ""

	u := fmt.Sprintf("%s/conversations/%s?userId=%s", c.baseURL, id, c.user.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		c.lastErr = "Failed to delete conversation. Please try again."
		return err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		c.lastErr = "Failed to delete conversation. Please try again."
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.lastErr = "Failed to delete conversation. Please try again."
		return fmt.Errorf("deleting conversation: status %d", resp.StatusCode)
	}

	if id == c.conversationID {
		_, err = c.newConversation(ctx)
		return err
	}
	return c.refreshConversations(ctx)
}

// requestCompletion posts the full transcript and returns the
// assistant's reply text.
func (c *Controller) requestCompletion(ctx context.Context) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"messages":       c.messages,
		"conversationId": c.conversationID,
		"userId":         c.user.ID,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API responded with status %d", resp.StatusCode)
	}

	reply, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(reply), nil
}

func (c *Controller) saveConversation(ctx context.Context) error {
	payload, err := json.Marshal(domain.Conversation{
		ID:        c.conversationID,
		UserID:    c.user.ID,
		Title:     deriveTitle(c.messages),
		Messages:  c.messages,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/conversations", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("saving conversation: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Controller) refreshConversations(ctx context.Context) error {
	u := fmt.Sprintf("%s/conversations?userId=%s", c.baseURL, c.user.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("listing conversations: status %d", resp.StatusCode)
	}

	var summaries []domain.ConversationSummary
	if err := json.NewDecoder(resp.Body).Decode(&summaries); err != nil {
		return err
	}

	c.conversations = summaries
	return nil
}

// ConversationID returns the active conversation id, empty when none.
func (c *Controller) ConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conversationID
}

// Messages returns a copy of the current transcript.
func (c *Controller) Messages() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Message(nil), c.messages...)
}

// Conversations returns a copy of the conversation summary list.
func (c *Controller) Conversations() []domain.ConversationSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.ConversationSummary(nil), c.conversations...)
}

func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Err returns the last user-visible error message, empty when none.
func (c *Controller) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = ""
}

// enrichContent embeds attachment references as inline markup so the
// model sees them; the structured attachments still travel alongside.
func enrichContent(content string, attachments []domain.Attachment) string {
	content = strings.TrimSpace(content)
	if len(attachments) == 0 {
		return content
	}

	lines := make([]string, 0, len(attachments))
	for _, att := range attachments {
		if att.Type == domain.AttachmentTypeImage {
			lines = append(lines, fmt.Sprintf("[Image: %s](%s)", att.Name, att.URL))
		} else {
			lines = append(lines, fmt.Sprintf("[File: %s](%s)", att.Name, att.URL))
		}
	}

	if content == "" {
		return strings.Join(lines, "\n")
	}
	return content + "\n\n" + strings.Join(lines, "\n")
}

func deriveTitle(messages []domain.Message) string {
	if len(messages) == 0 {
		return "New Conversation"
	}
	content := []rune(messages[0].Content)
	if len(content) > 50 {
		return string(content[:50]) + "..."
	}
	return string(content)
}
