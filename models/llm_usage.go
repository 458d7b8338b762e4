package models

import (
	"time"

	"github.com/google/uuid"
)

// LLMUsage records token consumption for a single LLM call
type LLMUsage struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	SessionID        *uuid.UUID `json:"session_id,omitempty" db:"session_id"`
	Provider         string     `json:"provider" db:"provider"`
	Model            string     `json:"model" db:"model"`
	OperationType    string     `json:"operation_type" db:"operation_type"`
	PromptTokens     int        `json:"prompt_tokens" db:"prompt_tokens"`
	CompletionTokens int        `json:"completion_tokens" db:"completion_tokens"`
	TotalTokens      int        `json:"total_tokens" db:"total_tokens"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}
