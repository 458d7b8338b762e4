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
	"github.com/lib/pq"
)

// ResultRepositoryImpl implements ResultRepository for PostgreSQL.
// Results are insert-only; the unique (project_id, agent_type, version) index
// guarantees version numbers are never reused.
type ResultRepositoryImpl struct {
	db *sqlx.DB
}

// NewResultRepository creates a new PostgreSQL result repository
func NewResultRepository(db *sqlx.DB) ports.ResultRepository {
	return &ResultRepositoryImpl{db: db}
}

// Create persists a new result at the given version
func (r *ResultRepositoryImpl) Create(ctx context.Context, result *models.AnalysisResult) error {
	if result.ID == uuid.Nil {
		result.ID = uuid.Must(uuid.NewV7())
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO analysis_results (id, project_id, agent_type, payload, version, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`, result.ID, result.ProjectID, result.AgentType, result.Payload, result.Version).
		Scan(&result.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return errors.DatabaseError("duplicate result version")
		}
		return errors.Wrap(err, "failed to persist result")
	}
	return nil
}

// LatestVersion returns the highest committed version for the pair, or 0
func (r *ResultRepositoryImpl) LatestVersion(ctx context.Context, projectID uuid.UUID, agentType string) (int, error) {
	var version int
	err := r.db.GetContext(ctx, &version, `
		SELECT COALESCE(MAX(version), 0)
		FROM analysis_results
		WHERE project_id = $1 AND agent_type = $2
	`, projectID, agentType)
	if err != nil {
		return 0, errors.Wrap(err, "failed to resolve latest version")
	}
	return version, nil
}

// GetLatest returns the highest-version result for the pair
func (r *ResultRepositoryImpl) GetLatest(ctx context.Context, projectID uuid.UUID, agentType string) (*models.AnalysisResult, error) {
	var result models.AnalysisResult
	err := r.db.GetContext(ctx, &result, `
		SELECT id, project_id, agent_type, payload, version, created_at
		FROM analysis_results
		WHERE project_id = $1 AND agent_type = $2
		ORDER BY version DESC
		LIMIT 1
	`, projectID, agentType)

	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("analysis result")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load latest result")
	}
	return &result, nil
}

// GetByVersion returns one specific version
func (r *ResultRepositoryImpl) GetByVersion(ctx context.Context, projectID uuid.UUID, agentType string, version int) (*models.AnalysisResult, error) {
	var result models.AnalysisResult
	err := r.db.GetContext(ctx, &result, `
		SELECT id, project_id, agent_type, payload, version, created_at
		FROM analysis_results
		WHERE project_id = $1 AND agent_type = $2 AND version = $3
	`, projectID, agentType, version)

	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("analysis result")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load result version")
	}
	return &result, nil
}
