package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ashevelev/chatweb/pkg/domain"
)

type conversationRepository struct {
	db *sql.DB
}

func NewConversationRepository(db *sql.DB) *conversationRepository {
	return &conversationRepository{db: db}
}

// Save upserts the whole conversation document, replacing the stored
// message transcript.
func (c *conversationRepository) Save(ctx context.Context, conv domain.Conversation) error {
	const query = `
		INSERT INTO conversations (id, user_id, title, messages, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id)
		DO UPDATE SET
			title = EXCLUDED.title,
			messages = EXCLUDED.messages,
			updated_at = EXCLUDED.updated_at
	`

	messages, err := json.Marshal(conv.Messages)
	if err != nil {
		return fmt.Errorf("encoding messages: %w", err)
	}

	_, err = c.db.ExecContext(ctx, query,
		conv.ID, conv.UserID, conv.Title, messages, conv.CreatedAt, conv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving conversation: %w", err)
	}

	return nil
}

// GetByID fetches a conversation scoped to its owner. A conversation
// owned by another user is reported as not found, never leaked.
func (c *conversationRepository) GetByID(ctx context.Context, id, userID string) (*domain.Conversation, error) {
	const query = `
		SELECT id, user_id, title, messages, created_at, updated_at
		FROM conversations
		WHERE id = $1 AND user_id = $2
	`

	var conv domain.Conversation
	var messages []byte
	err := c.db.QueryRowContext(ctx, query, id, userID).
		Scan(&conv.ID, &conv.UserID, &conv.Title, &messages, &conv.CreatedAt, &conv.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("fetching conversation by id: %w", err)
	}

	if err := json.Unmarshal(messages, &conv.Messages); err != nil {
		return nil, fmt.Errorf("decoding messages: %w", err)
	}

	return &conv, nil
}

// ListByUser returns conversation summaries ordered by recency.
func (c *conversationRepository) ListByUser(ctx context.Context, userID string) ([]domain.ConversationSummary, error) {
	const query = `
		SELECT id, user_id, title, created_at, updated_at
		FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`

	rows, err := c.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer rows.Close()

	summaries := []domain.ConversationSummary{}
	for rows.Next() {
		var s domain.ConversationSummary
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning conversation summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversations: %w", err)
	}

	return summaries, nil
}

// Delete removes a conversation owned by userID.
func (c *conversationRepository) Delete(ctx context.Context, id, userID string) error {
	const query = `
		DELETE FROM conversations
		WHERE id = $1 AND user_id = $2
	`

	res, err := c.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}
