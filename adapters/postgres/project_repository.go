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

// ProjectRepositoryImpl implements ProjectRepository for PostgreSQL
type ProjectRepositoryImpl struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new PostgreSQL project repository
func NewProjectRepository(db *sqlx.DB) ports.ProjectRepository {
	return &ProjectRepositoryImpl{db: db}
}

// GetProject retrieves a project by ID
func (r *ProjectRepositoryImpl) GetProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.GetContext(ctx, &project, `
		SELECT id, owner_id, name, status, current_agent, created_at, updated_at
		FROM projects
		WHERE id = $1
	`, projectID)

	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("project")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load project")
	}
	return &project, nil
}

// CreateProject creates a new project
func (r *ProjectRepositoryImpl) CreateProject(ctx context.Context, project *models.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.Must(uuid.NewV7())
	}
	if project.Status == "" {
		project.Status = models.ProjectStatusDraft
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO projects (id, owner_id, name, status, current_agent, created_at, updated_at)
		VALUES (:id, :owner_id, :name, :status, :current_agent, NOW(), NOW())
	`, project)
	if err != nil {
		return errors.Wrap(err, "failed to create project")
	}
	return nil
}

// UpdateStatus updates the project lifecycle status
func (r *ProjectRepositoryImpl) UpdateStatus(ctx context.Context, projectID uuid.UUID, status models.ProjectStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects SET status = $2, updated_at = NOW() WHERE id = $1
	`, projectID, status)
	if err != nil {
		return errors.Wrap(err, "failed to update project status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NotFound("project")
	}
	return nil
}

// SetCurrentAgent records which agent type is presently executing
func (r *ProjectRepositoryImpl) SetCurrentAgent(ctx context.Context, projectID uuid.UUID, agentType *string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects SET current_agent = $2, updated_at = NOW() WHERE id = $1
	`, projectID, agentType)
	if err != nil {
		return errors.Wrap(err, "failed to set current agent")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NotFound("project")
	}
	return nil
}
