package ports

import (
	"context"

	"marketmapper/models"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user and credit ledger operations
type UserRepository interface {
	// GetOrCreateDefaultUser gets the default user or creates it if it doesn't exist
	GetOrCreateDefaultUser(ctx context.Context) (*models.User, error)

	// GetUserByID retrieves a user by their ID
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)

	// CreateUser creates a new user
	CreateUser(ctx context.Context, user *models.User) error

	// AdjustCredits atomically changes the user's credit balance by delta and
	// returns the new balance. The adjustment must fail (no write) if it would
	// take the balance below zero.
	AdjustCredits(ctx context.Context, userID uuid.UUID, delta int) (int, error)
}
