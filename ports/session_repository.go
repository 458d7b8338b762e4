package ports

import (
	"context"

	"marketmapper/models"

	"github.com/google/uuid"
)

// SessionRepository defines the interface for agent session operations
type SessionRepository interface {
	// CreateSession creates a new session in running state with its input payload
	CreateSession(ctx context.Context, projectID uuid.UUID, agentType string, input models.JSONBMap) (*models.AgentSession, error)

	// GetSession retrieves a session by ID
	GetSession(ctx context.Context, sessionID uuid.UUID) (*models.AgentSession, error)

	// CompleteSession marks a session completed and stores its output.
	// Terminal sessions must not be updated again.
	CompleteSession(ctx context.Context, sessionID uuid.UUID, output models.JSONBMap) error

	// FailSession marks a session failed
	FailSession(ctx context.Context, sessionID uuid.UUID) error

	// ListProjectSessions returns sessions for a project, newest first
	ListProjectSessions(ctx context.Context, projectID uuid.UUID, limit int) ([]*models.AgentSession, error)
}
