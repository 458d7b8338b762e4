package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisResult is a persisted, versioned structured output of a completed
// session. Results are never mutated; new analyses create new versions and
// "latest" means highest version for the (project, agent type) pair.
type AnalysisResult struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProjectID uuid.UUID `json:"project_id" db:"project_id"`
	AgentType string    `json:"agent_type" db:"agent_type"`
	Payload   JSONBMap  `json:"payload" db:"payload"`
	Version   int       `json:"version" db:"version"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
