package research

import (
	"context"
	"sort"
	"time"

	"marketmapper/domain/research"
	"marketmapper/internal"
	"marketmapper/internal/cache"
	"marketmapper/ports"
)

// KindMarket names the market sizing/trends collaborator
const KindMarket = "market_sizing"

// NewMarketProvider builds the market sizing collaborator. The source supplies
// the raw assessment; the pipeline orders trends, repairs inconsistent funnel
// numbers and scores completeness.
func NewMarketProvider(
	source ports.MarketSource,
	c *cache.TTL[research.Sourced[research.MarketAssessment]],
	ttl time.Duration,
	logger *internal.Logger,
) *Provider[research.MarketAssessment] {
	fetch := func(ctx context.Context, subject research.Subject) (research.MarketAssessment, float64, error) {
		raw, err := source.Assessment(ctx, subject)
		if err != nil {
			return research.MarketAssessment{}, 0, err
		}
		assessment := NormalizeAssessment(raw)
		return assessment, assessmentConfidence(assessment), nil
	}
	return newProvider(KindMarket, ttl, c, fetch, research.EmptyMarket, logger)
}

// NormalizeAssessment enforces the TAM >= SAM >= SOM funnel and orders trends
// by strength (name as tiebreak) so identical inputs always render identically.
func NormalizeAssessment(a research.MarketAssessment) research.MarketAssessment {
	a.SchemaVersion = research.SchemaVersion
	if a.SAM > a.TAM {
		a.SAM = a.TAM
	}
	if a.SOM > a.SAM {
		a.SOM = a.SAM
	}
	if a.Trends == nil {
		a.Trends = []research.Trend{}
	}
	sort.Slice(a.Trends, func(i, j int) bool {
		if a.Trends[i].Strength != a.Trends[j].Strength {
			return a.Trends[i].Strength > a.Trends[j].Strength
		}
		return a.Trends[i].Name < a.Trends[j].Name
	})
	return a
}

func assessmentConfidence(a research.MarketAssessment) float64 {
	score := 0.0
	if a.TAM > 0 {
		score += 0.4
	}
	if a.SAM > 0 {
		score += 0.2
	}
	if a.SOM > 0 {
		score += 0.1
	}
	if len(a.Trends) > 0 {
		score += 0.3
	}
	return clamp01(score)
}
