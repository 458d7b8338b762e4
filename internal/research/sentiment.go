package research

import (
	"context"
	"sort"
	"time"

	"marketmapper/domain/research"
	"marketmapper/internal"
	"marketmapper/internal/cache"
	"marketmapper/ports"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// KindSentiment names the sentiment analysis collaborator
const KindSentiment = "sentiment_analysis"

// NewSentimentProvider builds the sentiment collaborator: raw per-theme score
// observations are reduced to theme medians and a mention-weighted overall
// score. Sentiment decays quickly, so this kind sits on the short TTL tier.
func NewSentimentProvider(
	source ports.SentimentSource,
	c *cache.TTL[research.Sourced[research.SentimentSnapshot]],
	ttl time.Duration,
	logger *internal.Logger,
) *Provider[research.SentimentSnapshot] {
	fetch := func(ctx context.Context, subject research.Subject) (research.SentimentSnapshot, float64, error) {
		observations, err := source.Observations(ctx, subject)
		if err != nil {
			return research.SentimentSnapshot{}, 0, err
		}
		snapshot := BuildSnapshot(observations)
		return snapshot, snapshotConfidence(snapshot), nil
	}
	return newProvider(KindSentiment, ttl, c, fetch, research.EmptySentiment, logger)
}

// BuildSnapshot reduces raw observations to a deterministic snapshot.
// Theme score is the median of its observations; the overall score is the
// mention-weighted mean over themes.
func BuildSnapshot(observations map[string][]float64) research.SentimentSnapshot {
	themes := make([]research.Theme, 0, len(observations))
	sample := 0
	for name, scores := range observations {
		if len(scores) == 0 {
			continue
		}
		median, err := stats.Median(scores)
		if err != nil {
			continue
		}
		themes = append(themes, research.Theme{
			Name:     name,
			Score:    median,
			Mentions: len(scores),
		})
		sample += len(scores)
	}

	sort.Slice(themes, func(i, j int) bool {
		if themes[i].Mentions != themes[j].Mentions {
			return themes[i].Mentions > themes[j].Mentions
		}
		return themes[i].Name < themes[j].Name
	})

	overall := 0.0
	if len(themes) > 0 {
		values := make([]float64, len(themes))
		weights := make([]float64, len(themes))
		for i, th := range themes {
			values[i] = th.Score
			weights[i] = float64(th.Mentions)
		}
		overall = stat.Mean(values, weights)
	}

	return research.SentimentSnapshot{
		SchemaVersion: research.SchemaVersion,
		Score:         overall,
		SampleSize:    sample,
		Themes:        themes,
	}
}

func snapshotConfidence(s research.SentimentSnapshot) float64 {
	// Confidence saturates at 50 observations.
	return clamp01(float64(s.SampleSize) / 50.0)
}
