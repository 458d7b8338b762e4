package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the lifecycle state of an agent session
type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "pending"
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusFailed    SessionStatus = "failed"
)

// JSONBMap is a map stored as JSONB in postgres
type JSONBMap map[string]interface{}

// Value implements driver.Valuer
func (m JSONBMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner
func (m *JSONBMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONBMap", src)
	}
	return json.Unmarshal(data, m)
}

// AgentSession is one execution record of an agent run.
// Terminal once status reaches completed or failed; never re-entered.
type AgentSession struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	ProjectID uuid.UUID     `json:"project_id" db:"project_id"`
	AgentType string        `json:"agent_type" db:"agent_type"`
	Status    SessionStatus `json:"status" db:"status"`
	Input     JSONBMap      `json:"input" db:"input"`
	Output    JSONBMap      `json:"output,omitempty" db:"output"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// IsTerminal reports whether the session has reached a terminal status
func (s *AgentSession) IsTerminal() bool {
	return s.Status == SessionStatusCompleted || s.Status == SessionStatusFailed
}
