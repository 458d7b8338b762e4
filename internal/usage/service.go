package usage

import (
	"context"
	"time"

	"marketmapper/internal"
	"marketmapper/models"
	"marketmapper/ports"

	"github.com/google/uuid"
)

// Service handles LLM usage tracking and persistence
type Service struct {
	repo ports.LLMUsageRepository
	log  *internal.Logger
}

// NewService creates a new usage service
func NewService(repo ports.LLMUsageRepository, logger *internal.Logger) *Service {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Service{repo: repo, log: logger}
}

// Record persists usage for one LLM call. Best effort: tracking problems are
// logged and never fail the caller's run.
func (s *Service) Record(ctx context.Context, sessionID *uuid.UUID, operationType string, usage *ports.UsageData) {
	if usage == nil {
		return
	}
	if usage.PromptTokens < 0 || usage.CompletionTokens < 0 || usage.TotalTokens < 0 {
		s.log.Warn("[UsageService] invalid token counts: %+v", usage)
		return
	}

	record := &models.LLMUsage{
		ID:               uuid.New(),
		SessionID:        sessionID,
		Provider:         usage.Provider,
		Model:            usage.Model,
		OperationType:    operationType,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
		CreatedAt:        time.Now(),
	}

	if err := s.persistWithRetry(ctx, record); err != nil {
		s.log.Error("[UsageService] failed to persist usage after retries: %v", err)
	}
}

// persistWithRetry attempts to persist usage with exponential backoff
func (s *Service) persistWithRetry(ctx context.Context, record *models.LLMUsage) error {
	const maxRetries = 3
	const baseDelay = 50 * time.Millisecond

	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err = s.repo.RecordUsage(ctx, record); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(baseDelay << attempt):
		}
	}
	return err
}
