package ports

import (
	"context"

	"marketmapper/domain/research"
)

// Research sources are the pluggable seam behind the collaborators: each
// supplies raw records for one domain, and the deterministic scoring,
// classification and aggregation on top of them lives in internal/research.
// Implementations must be reproducible given identical inputs.

// CompetitorSource supplies raw competitor candidates for a subject
type CompetitorSource interface {
	Candidates(ctx context.Context, subject research.Subject) ([]research.CompetitorRecord, error)
}

// MarketSource supplies market sizing observations
type MarketSource interface {
	Assessment(ctx context.Context, subject research.Subject) (research.MarketAssessment, error)
}

// SentimentSource supplies raw sentiment observations as scores in [-1,1]
// grouped by theme
type SentimentSource interface {
	Observations(ctx context.Context, subject research.Subject) (map[string][]float64, error)
}

// WebSource supplies per-channel activity signals plus trending queries
type WebSource interface {
	Signals(ctx context.Context, subject research.Subject) ([]research.ChannelSignal, []string, error)
}
