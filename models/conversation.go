package models

import (
	"time"

	"github.com/google/uuid"
)

// ConversationRole identifies who produced a conversation entry
type ConversationRole string

const (
	RoleUser      ConversationRole = "user"
	RoleAssistant ConversationRole = "assistant"
	RoleSystem    ConversationRole = "system"
)

// Conversation is an append-only audit log entry for a session.
// Entries are never mutated or deleted; every session gets at least a start
// entry and a completion or failure entry.
type Conversation struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	SessionID uuid.UUID        `json:"session_id" db:"session_id"`
	Role      ConversationRole `json:"role" db:"role"`
	Text      string           `json:"text" db:"text"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
