package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageRole identifies the author of a conversation message
type MessageRole string

const (
	// MessageRoleUser is a message written by the user
	MessageRoleUser MessageRole = "user"
	// MessageRoleAssistant is a message produced by the assistant
	MessageRoleAssistant MessageRole = "assistant"
)

// Message represents one turn in a user's conversation log.
// Messages are append-only; the bigserial ID is the chronological order
// the conversation assembler relies on.
type Message struct {
	ID        int64       `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}
