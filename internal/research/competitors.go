package research

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"marketmapper/domain/research"
	"marketmapper/internal"
	"marketmapper/internal/cache"
	"marketmapper/ports"
)

// KindCompetitors names the competitor discovery collaborator
const KindCompetitors = "competitor_discovery"

// Similarity thresholds for segment classification
const (
	directThreshold   = 0.70
	indirectThreshold = 0.40
)

// NewCompetitorProvider builds the competitor discovery collaborator:
// candidate generation (source) -> similarity scoring -> segment
// classification -> landscape aggregation with concentration and
// barrier-to-entry heuristics. All stages are deterministic over the fetched
// records.
func NewCompetitorProvider(
	source ports.CompetitorSource,
	c *cache.TTL[research.Sourced[research.CompetitorLandscape]],
	ttl time.Duration,
	logger *internal.Logger,
) *Provider[research.CompetitorLandscape] {
	fetch := func(ctx context.Context, subject research.Subject) (research.CompetitorLandscape, float64, error) {
		records, err := source.Candidates(ctx, subject)
		if err != nil {
			return research.CompetitorLandscape{}, 0, err
		}
		landscape := BuildLandscape(subject, records)
		confidence := landscapeConfidence(landscape)
		return landscape, confidence, nil
	}
	return newProvider(KindCompetitors, ttl, c, fetch, research.EmptyLandscape, logger)
}

// BuildLandscape scores, classifies and aggregates raw competitor records.
// Reproducible: identical records yield an identical landscape.
func BuildLandscape(subject research.Subject, records []research.CompetitorRecord) research.CompetitorLandscape {
	competitors := make([]research.Competitor, 0, len(records))
	for _, rec := range records {
		sim := Similarity(subject, rec)
		competitors = append(competitors, research.Competitor{
			Name:        rec.Name,
			Segment:     Classify(sim),
			Similarity:  sim,
			MarketShare: rec.MarketShare,
			Strengths:   strengths(rec),
		})
	}

	sort.Slice(competitors, func(i, j int) bool {
		if competitors[i].Similarity != competitors[j].Similarity {
			return competitors[i].Similarity > competitors[j].Similarity
		}
		return competitors[i].Name < competitors[j].Name
	})

	hhi := Concentration(records)
	return research.CompetitorLandscape{
		SchemaVersion:  research.SchemaVersion,
		Competitors:    competitors,
		Concentration:  hhi,
		BarrierToEntry: barrierToEntry(hhi, records),
		Summary:        landscapeSummary(competitors, hhi),
	}
}

// Similarity scores how closely a candidate overlaps the subject, in [0,1].
// Keyword overlap dominates; an exact industry match adds the rest.
func Similarity(subject research.Subject, rec research.CompetitorRecord) float64 {
	score := 0.6 * keywordOverlap(subject.Keywords, rec.Keywords)
	if strings.EqualFold(strings.TrimSpace(subject.Industry), strings.TrimSpace(rec.Industry)) {
		score += 0.4
	}
	return clamp01(score)
}

// Classify maps a similarity score onto a competitor segment
func Classify(similarity float64) research.CompetitorSegment {
	switch {
	case similarity >= directThreshold:
		return research.SegmentDirect
	case similarity >= indirectThreshold:
		return research.SegmentIndirect
	default:
		return research.SegmentSubstitute
	}
}

// Concentration computes the Herfindahl index over known market shares
func Concentration(records []research.CompetitorRecord) float64 {
	var hhi float64
	for _, rec := range records {
		if rec.MarketShare > 0 {
			hhi += rec.MarketShare * rec.MarketShare
		}
	}
	return clamp01(hhi)
}

func keywordOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, k := range a {
		set[strings.ToLower(strings.TrimSpace(k))] = struct{}{}
	}
	matches := 0
	for _, k := range b {
		if _, ok := set[strings.ToLower(strings.TrimSpace(k))]; ok {
			matches++
		}
	}
	denom := len(a)
	if len(b) > denom {
		denom = len(b)
	}
	return float64(matches) / float64(denom)
}

func strengths(rec research.CompetitorRecord) []string {
	var out []string
	if rec.MarketShare >= 0.2 {
		out = append(out, "dominant market share")
	}
	if rec.FundingUSD >= 50_000_000 {
		out = append(out, "heavily funded")
	}
	if len(rec.Keywords) >= 5 {
		out = append(out, "broad product surface")
	}
	return out
}

func barrierToEntry(hhi float64, records []research.CompetitorRecord) string {
	var topShare float64
	for _, rec := range records {
		if rec.MarketShare > topShare {
			topShare = rec.MarketShare
		}
	}
	switch {
	case hhi >= 0.25 || topShare >= 0.40:
		return "high"
	case hhi >= 0.10 || topShare >= 0.20:
		return "medium"
	default:
		return "low"
	}
}

func landscapeSummary(competitors []research.Competitor, hhi float64) string {
	counts := map[research.CompetitorSegment]int{}
	for _, c := range competitors {
		counts[c.Segment]++
	}
	return fmt.Sprintf("%d competitors identified (%d direct, %d indirect, %d substitute); market concentration %.2f",
		len(competitors),
		counts[research.SegmentDirect],
		counts[research.SegmentIndirect],
		counts[research.SegmentSubstitute],
		hhi,
	)
}

func landscapeConfidence(l research.CompetitorLandscape) float64 {
	// More identified competitors means better coverage; saturates at 8.
	return clamp01(float64(len(l.Competitors)) / 8.0)
}
