package research

import (
	"context"

	"marketmapper/domain/research"
	"marketmapper/internal"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// Service fans a subject out to every research collaborator in parallel and
// joins the results. This is a barrier, not a race: the bundle is returned
// once all four providers have settled (success or soft-fail).
type Service struct {
	competitors *Provider[research.CompetitorLandscape]
	market      *Provider[research.MarketAssessment]
	sentiment   *Provider[research.SentimentSnapshot]
	webIntel    *Provider[research.WebIntelligence]
	log         *internal.Logger
}

// NewService wires the four collaborators into a fan-out service
func NewService(
	competitors *Provider[research.CompetitorLandscape],
	market *Provider[research.MarketAssessment],
	sentiment *Provider[research.SentimentSnapshot],
	webIntel *Provider[research.WebIntelligence],
	logger *internal.Logger,
) *Service {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Service{
		competitors: competitors,
		market:      market,
		sentiment:   sentiment,
		webIntel:    webIntel,
		log:         logger,
	}
}

// FanOut issues all collaborator fetches concurrently and waits for the join.
// Provider soft-fail semantics mean no branch can surface an error; the group
// exists for the barrier and for context propagation on cancellation.
func (s *Service) FanOut(ctx context.Context, subject research.Subject) research.Bundle {
	var bundle research.Bundle

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bundle.Competitors = s.competitors.Fetch(ctx, subject)
		return nil
	})
	g.Go(func() error {
		bundle.Market = s.market.Fetch(ctx, subject)
		return nil
	})
	g.Go(func() error {
		bundle.Sentiment = s.sentiment.Fetch(ctx, subject)
		return nil
	})
	g.Go(func() error {
		bundle.WebIntel = s.webIntel.Fetch(ctx, subject)
		return nil
	})
	_ = g.Wait()

	s.log.Debug("[Research] fan-out settled: competitors=%.2f market=%.2f sentiment=%.2f web=%.2f",
		bundle.Competitors.Confidence, bundle.Market.Confidence,
		bundle.Sentiment.Confidence, bundle.WebIntel.Confidence)
	return bundle
}

// BundleConfidence aggregates per-collaborator confidences into one score.
// Competitor and market evidence carry more weight than fast-moving signals.
func BundleConfidence(b research.Bundle) float64 {
	values := []float64{
		b.Competitors.Confidence,
		b.Market.Confidence,
		b.Sentiment.Confidence,
		b.WebIntel.Confidence,
	}
	weights := []float64{0.35, 0.30, 0.20, 0.15}
	return clamp01(stat.Mean(values, weights))
}
