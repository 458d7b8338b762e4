package research

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"marketmapper/domain/core"
	"marketmapper/domain/research"
)

// Offline sources stand in for external research backends. They are seeded
// from the subject's query hash, so identical subjects always produce
// identical records; no network, no real scraping.

// OfflineCompetitorSource generates a reproducible competitor candidate set
type OfflineCompetitorSource struct{}

// Candidates implements ports.CompetitorSource
func (OfflineCompetitorSource) Candidates(ctx context.Context, subject research.Subject) ([]research.CompetitorRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rng := subjectRNG(subject, "competitors")

	n := 3 + rng.Intn(6)
	records := make([]research.CompetitorRecord, 0, n)
	remaining := 0.9
	for i := 0; i < n; i++ {
		share := remaining * (0.1 + 0.4*rng.Float64()) / float64(n-i)
		remaining -= share
		keywords := pick(rng, subject.Keywords, 2)
		keywords = append(keywords, fmt.Sprintf("%s-tools", strings.ToLower(strings.TrimSpace(subject.Industry))))
		records = append(records, research.CompetitorRecord{
			Name:        fmt.Sprintf("%s Co %d", titleWord(subject.Industry), i+1),
			Description: fmt.Sprintf("established player %d in %s", i+1, subject.Industry),
			Industry:    subject.Industry,
			Keywords:    keywords,
			MarketShare: share,
			FundingUSD:  float64(rng.Intn(200)) * 1_000_000,
		})
	}
	return records, nil
}

// OfflineMarketSource generates a reproducible market assessment
type OfflineMarketSource struct{}

// Assessment implements ports.MarketSource
func (OfflineMarketSource) Assessment(ctx context.Context, subject research.Subject) (research.MarketAssessment, error) {
	if err := ctx.Err(); err != nil {
		return research.MarketAssessment{}, err
	}
	rng := subjectRNG(subject, "market")

	tam := 500 + 9500*rng.Float64()
	sam := tam * (0.1 + 0.3*rng.Float64())
	som := sam * (0.05 + 0.15*rng.Float64())
	directions := []research.TrendDirection{research.TrendRising, research.TrendFlat, research.TrendDeclining}

	trends := make([]research.Trend, 0, 3)
	for i, name := range []string{"consumer adoption", "channel shift", "pricing pressure"} {
		trends = append(trends, research.Trend{
			Name:      name,
			Direction: directions[(i+rng.Intn(3))%3],
			Strength:  rng.Float64(),
		})
	}

	return research.MarketAssessment{
		TAM:        tam,
		SAM:        sam,
		SOM:        som,
		GrowthRate: -0.05 + 0.30*rng.Float64(),
		Trends:     trends,
	}, nil
}

// OfflineSentimentSource generates reproducible sentiment observations
type OfflineSentimentSource struct{}

// Observations implements ports.SentimentSource
func (OfflineSentimentSource) Observations(ctx context.Context, subject research.Subject) (map[string][]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rng := subjectRNG(subject, "sentiment")

	out := make(map[string][]float64, 4)
	for _, theme := range []string{"pricing", "quality", "availability", "support"} {
		n := 5 + rng.Intn(20)
		scores := make([]float64, n)
		bias := -0.4 + 0.8*rng.Float64()
		for i := range scores {
			scores[i] = clampRange(bias+(-0.3+0.6*rng.Float64()), -1, 1)
		}
		out[theme] = scores
	}
	return out, nil
}

// OfflineWebSource generates reproducible channel signals
type OfflineWebSource struct{}

// Signals implements ports.WebSource
func (OfflineWebSource) Signals(ctx context.Context, subject research.Subject) ([]research.ChannelSignal, []string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	rng := subjectRNG(subject, "web")

	channels := make([]research.ChannelSignal, 0, 4)
	for _, name := range []string{"reddit", "x", "tiktok", "search"} {
		channels = append(channels, research.ChannelSignal{
			Channel:    name,
			Volume:     rng.Intn(400),
			Engagement: rng.Float64(),
		})
	}

	queries := pick(rng, subject.Keywords, 3)
	if len(queries) == 0 {
		queries = []string{strings.ToLower(strings.TrimSpace(subject.Industry))}
	}
	return channels, queries, nil
}

// subjectRNG derives a deterministic RNG from the subject hash and a salt
func subjectRNG(subject research.Subject, salt string) *rand.Rand {
	key := core.NewHash([]byte(subject.QueryHash().String() + ":" + salt)).String()
	seed, _ := strconv.ParseUint(key[:16], 16, 64)
	return rand.New(rand.NewSource(int64(seed)))
}

func pick(rng *rand.Rand, from []string, max int) []string {
	if len(from) == 0 || max <= 0 {
		return nil
	}
	idx := rng.Perm(len(from))
	if max > len(idx) {
		max = len(idx)
	}
	out := make([]string, 0, max)
	for _, i := range idx[:max] {
		out = append(out, from[i])
	}
	return out
}

func titleWord(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "Market"
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
