package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"

	"marketmapper/internal/errors"
	"marketmapper/models"
	"marketmapper/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SessionRepositoryImpl implements SessionRepository for PostgreSQL
type SessionRepositoryImpl struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sqlx.DB) ports.SessionRepository {
	return &SessionRepositoryImpl{db: db}
}

// CreateSession creates a new session in running state with its input payload
func (r *SessionRepositoryImpl) CreateSession(ctx context.Context, projectID uuid.UUID, agentType string, input models.JSONBMap) (*models.AgentSession, error) {
	session := &models.AgentSession{
		ID:        uuid.Must(uuid.NewV7()),
		ProjectID: projectID,
		AgentType: agentType,
		Status:    models.SessionStatusRunning,
		Input:     input,
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO agent_sessions (id, project_id, agent_type, status, input, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`, session.ID, session.ProjectID, session.AgentType, session.Status, session.Input).
		Scan(&session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session")
	}
	return session, nil
}

// GetSession retrieves a session by ID
func (r *SessionRepositoryImpl) GetSession(ctx context.Context, sessionID uuid.UUID) (*models.AgentSession, error) {
	var session models.AgentSession
	err := r.db.GetContext(ctx, &session, `
		SELECT id, project_id, agent_type, status, input, output, created_at, updated_at
		FROM agent_sessions
		WHERE id = $1
	`, sessionID)

	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("session")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load session")
	}
	return &session, nil
}

// CompleteSession marks a session completed and stores its output. The status
// guard in the WHERE clause keeps terminal sessions immutable.
func (r *SessionRepositoryImpl) CompleteSession(ctx context.Context, sessionID uuid.UUID, output models.JSONBMap) error {
	return r.transition(ctx, sessionID, models.SessionStatusCompleted, output)
}

// FailSession marks a session failed
func (r *SessionRepositoryImpl) FailSession(ctx context.Context, sessionID uuid.UUID) error {
	return r.transition(ctx, sessionID, models.SessionStatusFailed, nil)
}

func (r *SessionRepositoryImpl) transition(ctx context.Context, sessionID uuid.UUID, status models.SessionStatus, output models.JSONBMap) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE agent_sessions
		SET status = $2, output = COALESCE($3, output), updated_at = NOW()
		WHERE id = $1 AND status NOT IN ('completed', 'failed')
	`, sessionID, status, output)
	if err != nil {
		return errors.Wrapf(err, "failed to mark session %s", status)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read transition result")
	}
	if n == 0 {
		if _, getErr := r.GetSession(ctx, sessionID); getErr != nil {
			return getErr
		}
		return errors.DatabaseError("session is terminal and cannot be updated")
	}
	return nil
}

// ListProjectSessions returns sessions for a project, newest first
func (r *SessionRepositoryImpl) ListProjectSessions(ctx context.Context, projectID uuid.UUID, limit int) ([]*models.AgentSession, error) {
	if limit <= 0 {
		limit = 50
	}
	var sessions []*models.AgentSession
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT id, project_id, agent_type, status, input, output, created_at, updated_at
		FROM agent_sessions
		WHERE project_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, projectID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sessions")
	}
	return sessions, nil
}
