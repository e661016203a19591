package services

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/ashevelev/chatweb/pkg/domain"
)

type ConversationRepository interface {
	Save(ctx context.Context, conv domain.Conversation) error
	GetByID(ctx context.Context, id, userID string) (*domain.Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]domain.ConversationSummary, error)
	Delete(ctx context.Context, id, userID string) error
}

type conversationService struct {
	repo ConversationRepository
}

func NewConversationService(repo ConversationRepository) *conversationService {
	return &conversationService{repo: repo}
}

// Save upserts a conversation, stamping timestamps and deriving a title
// when the caller did not provide one.
func (c *conversationService) Save(ctx context.Context, conv domain.Conversation) error {
	now := time.Now()
	conv.UpdatedAt = now
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = now
	}
	if conv.Title == "" {
		conv.Title = deriveTitle(conv.Messages)
	}

	if err := c.repo.Save(ctx, conv); err != nil {
		return fmt.Errorf("saving conversation: %w", err)
	}
	return nil
}

func (c *conversationService) Get(ctx context.Context, id, userID string) (*domain.Conversation, error) {
	return c.repo.GetByID(ctx, id, userID)
}

func (c *conversationService) List(ctx context.Context, userID string) ([]domain.ConversationSummary, error) {
	return c.repo.ListByUser(ctx, userID)
}

// Update merges a patch onto the stored conversation after the
// ownership check.
func (c *conversationService) Update(ctx context.Context, id, userID string, patch domain.ConversationPatch) error {
	existing, err := c.repo.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	existing.Title = lo.FromPtrOr(patch.Title, existing.Title)
	if patch.Messages != nil {
		existing.Messages = *patch.Messages
	}
	existing.UpdatedAt = time.Now()

	if err := c.repo.Save(ctx, *existing); err != nil {
		return fmt.Errorf("updating conversation: %w", err)
	}
	return nil
}

// Delete removes a conversation after the ownership check.
func (c *conversationService) Delete(ctx context.Context, id, userID string) error {
	if _, err := c.repo.GetByID(ctx, id, userID); err != nil {
		return err
	}
	return c.repo.Delete(ctx, id, userID)
}

// deriveTitle takes the leading text of the first message, truncated
// the way the sidebar shows it.
func deriveTitle(messages []domain.Message) string {
	if len(messages) == 0 {
		return "New Conversation"
	}

	content := []rune(messages[0].Content)
	return lo.Ternary(len(content) > 50, string(content[:50])+"...", string(content))
}
