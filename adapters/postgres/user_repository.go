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

var defaultUserID = uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

const defaultCredits = 10

// UserRepositoryImpl implements UserRepository for PostgreSQL
type UserRepositoryImpl struct {
	db *sqlx.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sqlx.DB) ports.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// GetOrCreateDefaultUser gets the default user or creates it if it doesn't exist
func (r *UserRepositoryImpl) GetOrCreateDefaultUser(ctx context.Context) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `
		SELECT id, email, username, credits, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`, defaultUserID)

	if err == nil {
		return &user, nil
	}
	if !stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(err, "failed to load default user")
	}

	user = models.User{
		ID:       defaultUserID,
		Email:    "default@marketmapper.local",
		Username: "default",
		Credits:  defaultCredits,
		IsActive: true,
	}

	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, username, credits, is_active, created_at, updated_at)
		VALUES (:id, :email, :username, :credits, :is_active, NOW(), NOW())
	`, user)

	if err != nil {
		// Another process may have created it concurrently.
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return r.GetUserByID(ctx, defaultUserID)
		}
		return nil, errors.Wrap(err, "failed to create default user")
	}

	return &user, nil
}

// GetUserByID retrieves a user by their ID
func (r *UserRepositoryImpl) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `
		SELECT id, email, username, credits, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`, userID)

	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("user")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user")
	}
	return &user, nil
}

// CreateUser creates a new user
func (r *UserRepositoryImpl) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.Must(uuid.NewV7())
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, username, credits, is_active, created_at, updated_at)
		VALUES (:id, :email, :username, :credits, :is_active, NOW(), NOW())
	`, user)
	if err != nil {
		return errors.Wrap(err, "failed to create user")
	}
	return nil
}

// AdjustCredits changes the balance by delta in one statement. The WHERE
// clause makes the write and the floor check atomic: when the adjustment would
// go negative no row matches and nothing is written.
func (r *UserRepositoryImpl) AdjustCredits(ctx context.Context, userID uuid.UUID, delta int) (int, error) {
	var balance int
	err := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET credits = credits + $2, updated_at = NOW()
		WHERE id = $1 AND credits + $2 >= 0
		RETURNING credits
	`, userID, delta).Scan(&balance)

	if stderrors.Is(err, sql.ErrNoRows) {
		// Either the user does not exist or the floor blocked the write.
		current, lookupErr := r.GetUserByID(ctx, userID)
		if lookupErr != nil {
			return 0, lookupErr
		}
		return current.Credits, errors.InsufficientCredits(current.Credits)
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to adjust credits")
	}
	return balance, nil
}
