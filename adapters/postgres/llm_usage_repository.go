package postgres

import (
	"context"

	"marketmapper/internal/errors"
	"marketmapper/models"
	"marketmapper/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// LLMUsageRepositoryImpl implements LLMUsageRepository for PostgreSQL
type LLMUsageRepositoryImpl struct {
	db *sqlx.DB
}

// NewLLMUsageRepository creates a new PostgreSQL LLM usage repository
func NewLLMUsageRepository(db *sqlx.DB) ports.LLMUsageRepository {
	return &LLMUsageRepositoryImpl{db: db}
}

// RecordUsage records token consumption for a single LLM call
func (r *LLMUsageRepositoryImpl) RecordUsage(ctx context.Context, usage *models.LLMUsage) error {
	if usage.ID == uuid.Nil {
		usage.ID = uuid.Must(uuid.NewV7())
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO llm_usage (
			id, session_id, provider, model, operation_type,
			prompt_tokens, completion_tokens, total_tokens, created_at
		) VALUES (
			:id, :session_id, :provider, :model, :operation_type,
			:prompt_tokens, :completion_tokens, :total_tokens, NOW()
		)
	`, usage)
	if err != nil {
		return errors.Wrap(err, "failed to record llm usage")
	}
	return nil
}
