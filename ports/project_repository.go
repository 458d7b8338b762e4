package ports

import (
	"context"

	"marketmapper/models"

	"github.com/google/uuid"
)

// ProjectRepository defines the interface for project data operations
type ProjectRepository interface {
	// GetProject retrieves a project by ID
	GetProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error)

	// CreateProject creates a new project
	CreateProject(ctx context.Context, project *models.Project) error

	// UpdateStatus updates the project lifecycle status
	UpdateStatus(ctx context.Context, projectID uuid.UUID, status models.ProjectStatus) error

	// SetCurrentAgent records which agent type is presently executing for the
	// project; nil clears it.
	SetCurrentAgent(ctx context.Context, projectID uuid.UUID, agentType *string) error
}
