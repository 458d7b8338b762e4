package ports

import (
	"context"

	"marketmapper/models"

	"github.com/google/uuid"
)

// ConversationRepository defines the interface for the append-only audit log.
// There is deliberately no update or delete operation.
type ConversationRepository interface {
	// Append adds one entry to a session's conversation log
	Append(ctx context.Context, sessionID uuid.UUID, role models.ConversationRole, text string) (*models.Conversation, error)

	// ListBySession returns all entries for a session in insertion order
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*models.Conversation, error)
}
