package postgres

import (
	"context"

	"marketmapper/internal/errors"
	"marketmapper/models"
	"marketmapper/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ConversationRepositoryImpl implements the append-only audit log for
// PostgreSQL. The table has no UPDATE or DELETE path.
type ConversationRepositoryImpl struct {
	db *sqlx.DB
}

// NewConversationRepository creates a new PostgreSQL conversation repository
func NewConversationRepository(db *sqlx.DB) ports.ConversationRepository {
	return &ConversationRepositoryImpl{db: db}
}

// Append adds one entry to a session's conversation log
func (r *ConversationRepositoryImpl) Append(ctx context.Context, sessionID uuid.UUID, role models.ConversationRole, text string) (*models.Conversation, error) {
	entry := &models.Conversation{
		ID:        uuid.Must(uuid.NewV7()),
		SessionID: sessionID,
		Role:      role,
		Text:      text,
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO conversations (id, session_id, role, text, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`, entry.ID, entry.SessionID, entry.Role, entry.Text).Scan(&entry.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to append conversation entry")
	}
	return entry, nil
}

// ListBySession returns all entries for a session in insertion order
func (r *ConversationRepositoryImpl) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*models.Conversation, error) {
	var entries []*models.Conversation
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, session_id, role, text, created_at
		FROM conversations
		WHERE session_id = $1
		ORDER BY created_at ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list conversation entries")
	}
	return entries, nil
}
