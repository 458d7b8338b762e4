package ports

import (
	"context"

	"marketmapper/models"
)

// LLMUsageRepository persists token usage records
type LLMUsageRepository interface {
	RecordUsage(ctx context.Context, usage *models.LLMUsage) error
}
