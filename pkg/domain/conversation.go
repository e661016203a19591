package domain

import "time"

type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ConversationPatch is a partial conversation update; nil fields are
// left untouched.
type ConversationPatch struct {
	Title    *string    `json:"title"`
	Messages *[]Message `json:"messages"`
}

// ConversationSummary is the sidebar view of a conversation: everything
// except the message transcript.
type ConversationSummary struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
