package agent

import (
	"context"

	"marketmapper/internal/schema"
	"marketmapper/models"

	"github.com/google/uuid"
)

// Runner is the execution contract every agent satisfies: one input/output
// schema pair and a run that moves a session through
// running -> completed | failed, strictly linear, no re-entry.
//
// Run owns the session lifecycle and the audit log entries. On any failure
// after session creation the session is marked failed, a "failed: <reason>"
// entry is appended, and the error is re-raised so the orchestrator can
// perform the credit refund.
type Runner interface {
	Type() string
	InputContract() schema.Contract
	OutputContract() schema.Contract
	Run(ctx context.Context, projectID uuid.UUID, input models.JSONBMap) (uuid.UUID, models.JSONBMap, error)
}
