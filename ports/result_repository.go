package ports

import (
	"context"

	"marketmapper/models"

	"github.com/google/uuid"
)

// ResultRepository defines the interface for versioned analysis results
type ResultRepository interface {
	// Create persists a new result at the given version
	Create(ctx context.Context, result *models.AnalysisResult) error

	// LatestVersion returns the highest committed version for the
	// (project, agent type) pair, or 0 when none exists
	LatestVersion(ctx context.Context, projectID uuid.UUID, agentType string) (int, error)

	// GetLatest returns the highest-version result for the pair
	GetLatest(ctx context.Context, projectID uuid.UUID, agentType string) (*models.AnalysisResult, error)

	// GetByVersion returns one specific version
	GetByVersion(ctx context.Context, projectID uuid.UUID, agentType string, version int) (*models.AnalysisResult, error)
}
