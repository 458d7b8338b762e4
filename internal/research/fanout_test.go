package research

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"marketmapper/domain/research"
	"marketmapper/internal/cache"
)

// countingCompetitorSource counts underlying fetches for cache idempotence checks
type countingCompetitorSource struct {
	calls atomic.Int64
}

func (s *countingCompetitorSource) Candidates(ctx context.Context, subject research.Subject) ([]research.CompetitorRecord, error) {
	s.calls.Add(1)
	return []research.CompetitorRecord{
		{Name: "Rival", Industry: subject.Industry, Keywords: subject.Keywords, MarketShare: 0.2},
	}, nil
}

type failingCompetitorSource struct{}

func (failingCompetitorSource) Candidates(ctx context.Context, subject research.Subject) ([]research.CompetitorRecord, error) {
	return nil, errors.New("upstream unavailable")
}

func subjectFixture() research.Subject {
	return research.Subject{
		BusinessIdea: "left-handed scissors subscription",
		Industry:     "ecommerce",
		Keywords:     []string{"scissors"},
	}
}

func TestProvider_CacheIdempotence(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	source := &countingCompetitorSource{}
	c := cache.NewWithClock[research.Sourced[research.CompetitorLandscape]](clock)
	p := NewCompetitorProvider(source, c, time.Hour, nil)

	first := p.Fetch(context.Background(), subjectFixture())
	second := p.Fetch(context.Background(), subjectFixture())

	if got := source.calls.Load(); got != 1 {
		t.Fatalf("two identical queries within TTL must issue exactly one fetch, got %d", got)
	}
	if first.FromCache {
		t.Error("first fetch must not report a cache hit")
	}
	if !second.FromCache {
		t.Error("second fetch must report a cache hit")
	}

	// Past the TTL window exactly one more underlying fetch happens.
	now = now.Add(2 * time.Hour)
	p.Fetch(context.Background(), subjectFixture())
	p.Fetch(context.Background(), subjectFixture())
	if got := source.calls.Load(); got != 2 {
		t.Fatalf("expected exactly one refetch after expiry, total %d", got)
	}
}

func TestProvider_SoftFailReturnsDefault(t *testing.T) {
	c := cache.New[research.Sourced[research.CompetitorLandscape]]()
	p := NewCompetitorProvider(failingCompetitorSource{}, c, time.Hour, nil)

	got := p.Fetch(context.Background(), subjectFixture())

	if got.Confidence != 0 {
		t.Errorf("soft-fail must carry confidence 0, got %.2f", got.Confidence)
	}
	if got.Value.Competitors == nil || len(got.Value.Competitors) != 0 {
		t.Error("soft-fail must return the empty-but-typed default landscape")
	}
	if c.Len() != 0 {
		t.Error("failures must not be cached")
	}
}

func TestProvider_CancelledFetchNotCached(t *testing.T) {
	c := cache.New[research.Sourced[research.CompetitorLandscape]]()
	p := NewCompetitorProvider(OfflineCompetitorSource{}, c, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Fetch(ctx, subjectFixture())

	if c.Len() != 0 {
		t.Error("a cancelled fetch must not commit a cache entry")
	}
}

func TestFanOut_JoinsAllCollaborators(t *testing.T) {
	svc := offlineService(t)
	bundle := svc.FanOut(context.Background(), subjectFixture())

	if bundle.Competitors.Value.Competitors == nil {
		t.Error("competitor landscape missing after fan-out")
	}
	if bundle.Market.Value.Trends == nil {
		t.Error("market assessment missing after fan-out")
	}
	if bundle.Sentiment.Value.Themes == nil {
		t.Error("sentiment snapshot missing after fan-out")
	}
	if bundle.WebIntel.Value.Channels == nil {
		t.Error("web intelligence missing after fan-out")
	}

	score := BundleConfidence(bundle)
	if score < 0 || score > 1 {
		t.Errorf("bundle confidence out of range: %.3f", score)
	}
}

func TestFanOut_Deterministic(t *testing.T) {
	a := offlineService(t).FanOut(context.Background(), subjectFixture())
	b := offlineService(t).FanOut(context.Background(), subjectFixture())

	if a.Competitors.Value.Summary != b.Competitors.Value.Summary {
		t.Error("offline sources must be reproducible for identical subjects")
	}
	if a.Market.Value.TAM != b.Market.Value.TAM {
		t.Error("offline market assessment must be reproducible")
	}
}

func TestOfflineCompetitorNamesSurviveMultibyteIndustry(t *testing.T) {
	subject := research.Subject{
		BusinessIdea: "curated online storefronts",
		Industry:     "écommerce",
	}
	records, err := OfflineCompetitorSource{}.Candidates(context.Background(), subject)
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(records) == 0 {
		t.Fatal("expected candidate records")
	}
	for _, rec := range records {
		if !utf8.ValidString(rec.Name) {
			t.Errorf("competitor name %q is not valid UTF-8", rec.Name)
		}
		if !strings.HasPrefix(rec.Name, "Écommerce") {
			t.Errorf("competitor name %q should start with the upcased industry", rec.Name)
		}
	}
}

func offlineService(t *testing.T) *Service {
	t.Helper()
	return NewService(
		NewCompetitorProvider(OfflineCompetitorSource{}, cache.New[research.Sourced[research.CompetitorLandscape]](), time.Hour, nil),
		NewMarketProvider(OfflineMarketSource{}, cache.New[research.Sourced[research.MarketAssessment]](), time.Hour, nil),
		NewSentimentProvider(OfflineSentimentSource{}, cache.New[research.Sourced[research.SentimentSnapshot]](), time.Hour, nil),
		NewWebIntelProvider(OfflineWebSource{}, cache.New[research.Sourced[research.WebIntelligence]](), time.Hour, nil),
		nil,
	)
}
