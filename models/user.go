package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a system user and their credit ledger.
// Credits are decremented before an agent run and restored if the run fails;
// the balance never goes negative.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Username  string    `json:"username" db:"username"`
	Credits   int       `json:"credits" db:"credits"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
