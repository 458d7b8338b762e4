package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatus represents the lifecycle status of a project
type ProjectStatus string

const (
	ProjectStatusDraft     ProjectStatus = "draft"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusArchived  ProjectStatus = "archived"
)

// Project represents a business idea under analysis.
// CurrentAgent holds the agent type presently executing; at most one non-nil
// value at a time per project, mutated by the orchestrator only.
type Project struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	OwnerID      uuid.UUID     `json:"owner_id" db:"owner_id"`
	Name         string        `json:"name" db:"name"`
	Status       ProjectStatus `json:"status" db:"status"`
	CurrentAgent *string       `json:"current_agent,omitempty" db:"current_agent"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}
