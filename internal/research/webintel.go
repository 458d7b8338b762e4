package research

import (
	"context"
	"sort"
	"time"

	"marketmapper/domain/research"
	"marketmapper/internal"
	"marketmapper/internal/cache"
	"marketmapper/ports"

	"gonum.org/v1/gonum/stat"
)

// KindWebIntel names the web/social intelligence collaborator
const KindWebIntel = "web_intelligence"

// NewWebIntelProvider builds the web/social intelligence collaborator over a
// per-channel signal source. Short TTL tier: social volume moves in hours.
func NewWebIntelProvider(
	source ports.WebSource,
	c *cache.TTL[research.Sourced[research.WebIntelligence]],
	ttl time.Duration,
	logger *internal.Logger,
) *Provider[research.WebIntelligence] {
	fetch := func(ctx context.Context, subject research.Subject) (research.WebIntelligence, float64, error) {
		signals, queries, err := source.Signals(ctx, subject)
		if err != nil {
			return research.WebIntelligence{}, 0, err
		}
		intel := BuildWebIntel(signals, queries)
		return intel, webIntelConfidence(intel), nil
	}
	return newProvider(KindWebIntel, ttl, c, fetch, research.EmptyWebIntel, logger)
}

// BuildWebIntel aggregates channel signals into a deterministic summary,
// ordered by volume with channel name as tiebreak
func BuildWebIntel(signals []research.ChannelSignal, queries []string) research.WebIntelligence {
	channels := make([]research.ChannelSignal, len(signals))
	copy(channels, signals)
	sort.Slice(channels, func(i, j int) bool {
		if channels[i].Volume != channels[j].Volume {
			return channels[i].Volume > channels[j].Volume
		}
		return channels[i].Channel < channels[j].Channel
	})

	mentions := 0
	for _, ch := range channels {
		mentions += ch.Volume
	}

	if queries == nil {
		queries = []string{}
	}
	sorted := make([]string, len(queries))
	copy(sorted, queries)
	sort.Strings(sorted)

	return research.WebIntelligence{
		SchemaVersion: research.SchemaVersion,
		Mentions:      mentions,
		Channels:      channels,
		TopQueries:    sorted,
	}
}

func webIntelConfidence(w research.WebIntelligence) float64 {
	if len(w.Channels) == 0 || w.Mentions == 0 {
		return 0
	}
	volumes := make([]float64, len(w.Channels))
	engagements := make([]float64, len(w.Channels))
	for i, ch := range w.Channels {
		volumes[i] = float64(ch.Volume)
		engagements[i] = ch.Engagement
	}
	// Volume-weighted engagement, scaled by coverage (saturates at 500 mentions).
	weighted := stat.Mean(engagements, volumes)
	coverage := clamp01(float64(w.Mentions) / 500.0)
	return clamp01(0.5*weighted + 0.5*coverage)
}
