package migration

import (
	"context"

	"marketmapper/internal/errors"

	"github.com/jmoiron/sqlx"
)

// MigrationRunner creates the database schema. Every statement is idempotent
// so the runner is safe to execute on every startup.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{version: "1.0.0"}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createUsersTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create users table")
	}
	if err := r.createProjectsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create projects table")
	}
	if err := r.createAgentSessionsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create agent_sessions table")
	}
	if err := r.createConversationsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create conversations table")
	}
	if err := r.createAnalysisResultsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create analysis_results table")
	}
	if err := r.createLLMUsageTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create llm_usage table")
	}
	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}
	return nil
}

func (r *MigrationRunner) createUsersTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email VARCHAR(255) UNIQUE NOT NULL,
			username VARCHAR(100) UNIQUE,
			credits INTEGER NOT NULL DEFAULT 0 CHECK (credits >= 0),
			is_active BOOLEAN DEFAULT true,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createProjectsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS projects (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			status VARCHAR(50) NOT NULL DEFAULT 'draft',
			current_agent VARCHAR(100),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createAgentSessionsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS agent_sessions (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			agent_type VARCHAR(100) NOT NULL,
			status VARCHAR(50) NOT NULL DEFAULT 'running',
			input JSONB,
			output JSONB,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createConversationsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS conversations (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			session_id UUID NOT NULL REFERENCES agent_sessions(id) ON DELETE CASCADE,
			role VARCHAR(20) NOT NULL,
			text TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createAnalysisResultsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS analysis_results (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			agent_type VARCHAR(100) NOT NULL,
			payload JSONB NOT NULL,
			version INTEGER NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			UNIQUE (project_id, agent_type, version)
		)
	`)
	return err
}

func (r *MigrationRunner) createLLMUsageTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS llm_usage (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			session_id UUID REFERENCES agent_sessions(id) ON DELETE SET NULL,
			provider VARCHAR(100) NOT NULL,
			model VARCHAR(100) NOT NULL,
			operation_type VARCHAR(100) NOT NULL,
			prompt_tokens INTEGER NOT NULL DEFAULT 0,
			completion_tokens INTEGER NOT NULL DEFAULT 0,
			total_tokens INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_projects_owner ON projects(owner_id);
		CREATE INDEX IF NOT EXISTS idx_sessions_project ON agent_sessions(project_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_conversations_session ON conversations(session_id, created_at ASC);
		CREATE INDEX IF NOT EXISTS idx_results_lookup ON analysis_results(project_id, agent_type, version DESC);
		CREATE INDEX IF NOT EXISTS idx_llm_usage_session ON llm_usage(session_id)
	`)
	return err
}
