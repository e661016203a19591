package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/samber/lo"

	"github.com/ashevelev/chatweb/pkg/contextwindow"
	"github.com/ashevelev/chatweb/pkg/domain"
	"github.com/ashevelev/chatweb/pkg/logger"
)

type CompletionProvider interface {
	CreateChatCompletion(ctx context.Context, messages []domain.Message) (string, error)
	StreamChatCompletion(ctx context.Context, messages []domain.Message, onDelta func(string) error) error
}

type MemoryStore interface {
	Add(ctx context.Context, userID, text string) error
	Search(ctx context.Context, userID, query string) ([]domain.Memory, error)
}

type chatService struct {
	provider CompletionProvider
	memories MemoryStore
	window   *contextwindow.Manager
}

func NewChatService(
	provider CompletionProvider,
	memories MemoryStore,
	window *contextwindow.Manager,
) *chatService {
	return &chatService{
		provider: provider,
		memories: memories,
		window:   window,
	}
}

// Respond produces the assistant's reply for the transcript. Provider
// failure degrades to a canned response; memory failures degrade to an
// empty memory list. Neither surfaces as an error.
func (c *chatService) Respond(ctx context.Context, userID string, messages []domain.Message) (string, error) {
	prompt := lastUserPrompt(messages)
	contextMessages := c.buildContext(ctx, userID, prompt, messages)

	reply, err := c.provider.CreateChatCompletion(ctx, contextMessages)
	if err != nil {
		slog.ErrorContext(ctx, "completion provider failed, falling back to canned response", logger.Err(err))
		return cannedResponse(prompt), nil
	}

	c.rememberPrompt(ctx, userID, prompt)

	return reply, nil
}

// StreamResponse forwards the reply to sink as it is generated. When
// the provider fails before anything was emitted, the canned response
// is sent through sink instead.
func (c *chatService) StreamResponse(ctx context.Context, userID string, messages []domain.Message, sink func(string) error) error {
	prompt := lastUserPrompt(messages)
	contextMessages := c.buildContext(ctx, userID, prompt, messages)

	emitted := false
	err := c.provider.StreamChatCompletion(ctx, contextMessages, func(delta string) error {
		emitted = true
		return sink(delta)
	})
	if err != nil {
		if emitted {
			return fmt.Errorf("streaming completion: %w", err)
		}
		slog.ErrorContext(ctx, "completion provider failed, falling back to canned response", logger.Err(err))
		return sink(cannedResponse(prompt))
	}

	c.rememberPrompt(ctx, userID, prompt)

	return nil
}

// buildContext prepends a system message carrying relevant long-term
// memories and trims the transcript to the token budget.
func (c *chatService) buildContext(ctx context.Context, userID, prompt string, messages []domain.Message) []domain.Message {
	memories, err := c.memories.Search(ctx, userID, prompt)
	if err != nil {
		slog.WarnContext(ctx, "memory search failed, continuing without memories", logger.Err(err))
		memories = nil
	}

	memoryContext := lo.Ternary(len(memories) > 0,
		"Here's some relevant context from previous conversations: "+strings.Join(
			lo.Map(memories, func(m domain.Memory, _ int) string { return m.Text }), "\n"),
		"No previous context available.")

	system := domain.Message{
		Role:    domain.RoleSystem,
		Content: "You are a helpful AI assistant. " + memoryContext,
	}

	return c.window.Trim(append([]domain.Message{system}, messages...))
}

func (c *chatService) rememberPrompt(ctx context.Context, userID, prompt string) {
	if prompt == "" {
		return
	}
	if err := c.memories.Add(ctx, userID, prompt); err != nil {
		slog.WarnContext(ctx, "memory save failed, continuing anyway", logger.Err(err))
	}
}

func lastUserPrompt(messages []domain.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleUser {
			return messages[i].Content
		}
	}
	if len(messages) > 0 {
		return messages[len(messages)-1].Content
	}
	return ""
}

var cannedResponses = []string{
	"That's an interesting question! I'd be happy to help you with that. Based on what you're asking, here are some key points to consider...",
	"Great question! Let me break this down for you in a simple way that's easy to understand...",
	"I understand what you're looking for. Here's my take on this topic, along with some practical insights...",
	"Thanks for asking! This is actually a topic I find quite fascinating. Let me share some thoughts on this...",
	"Excellent point! There are several ways to approach this, and I'll walk you through the most effective ones...",
	"That's a really good question that many people wonder about. Here's what I would recommend...",
	"I appreciate you bringing this up! Based on common patterns and best practices, here's what typically works well...",
	"Interesting topic! Let me provide you with a comprehensive answer that covers the main aspects you should know about...",
	"Good thinking on this one! There are a few different perspectives to consider, and I'll outline the key ones for you...",
	"Thanks for the question! This is something that can be approached in multiple ways, and I'll explain the most practical solution...",
}

// cannedResponse is the degraded-mode reply used when the completion
// provider is unavailable.
func cannedResponse(prompt string) string {
	response := cannedResponses[rand.Intn(len(cannedResponses))]

	lowered := strings.ToLower(prompt)
	switch {
	case strings.Contains(lowered, "javascript"):
		response += " JavaScript is a versatile programming language that powers modern web development, from frontend interactions to backend services."
	case strings.Contains(lowered, "react"):
		response += " React is a popular JavaScript library for building user interfaces, especially for web applications with complex state management."
	case strings.Contains(lowered, "api"):
		response += " APIs (Application Programming Interfaces) are essential for connecting different software systems and enabling data exchange between applications."
	default:
		response += " This is definitely a topic worth exploring further, and there are many resources available to dive deeper into this subject."
	}

	return response
}
