package research

import (
	"testing"

	"marketmapper/domain/research"
)

func TestClassify_Thresholds(t *testing.T) {
	cases := []struct {
		similarity float64
		want       research.CompetitorSegment
	}{
		{0.95, research.SegmentDirect},
		{0.70, research.SegmentDirect},
		{0.69, research.SegmentIndirect},
		{0.40, research.SegmentIndirect},
		{0.39, research.SegmentSubstitute},
		{0.0, research.SegmentSubstitute},
	}
	for _, tc := range cases {
		if got := Classify(tc.similarity); got != tc.want {
			t.Errorf("Classify(%.2f) = %s, want %s", tc.similarity, got, tc.want)
		}
	}
}

func TestBuildLandscape_Deterministic(t *testing.T) {
	subject := research.Subject{
		BusinessIdea: "left-handed scissors subscription",
		Industry:     "ecommerce",
		Keywords:     []string{"scissors", "subscription"},
	}
	records := []research.CompetitorRecord{
		{Name: "CraftCut", Industry: "ecommerce", Keywords: []string{"scissors", "subscription"}, MarketShare: 0.45},
		{Name: "BoxMonthly", Industry: "ecommerce", Keywords: []string{"subscription"}, MarketShare: 0.10},
		{Name: "OfficeMart", Industry: "retail", Keywords: []string{"stationery"}, MarketShare: 0.05},
	}

	first := BuildLandscape(subject, records)
	second := BuildLandscape(subject, records)

	if len(first.Competitors) != 3 {
		t.Fatalf("expected 3 competitors, got %d", len(first.Competitors))
	}
	if first.Competitors[0].Name != "CraftCut" {
		t.Errorf("expected highest similarity first, got %s", first.Competitors[0].Name)
	}
	if first.Competitors[0].Segment != research.SegmentDirect {
		t.Errorf("full keyword + industry overlap should be direct, got %s", first.Competitors[0].Segment)
	}
	if first.Competitors[2].Segment != research.SegmentSubstitute {
		t.Errorf("no overlap should classify as substitute, got %s", first.Competitors[2].Segment)
	}

	// top share 0.45 trips the high-barrier heuristic
	if first.BarrierToEntry != "high" {
		t.Errorf("expected high barrier, got %s", first.BarrierToEntry)
	}

	if first.Summary != second.Summary || first.Concentration != second.Concentration {
		t.Error("landscape must be reproducible for identical inputs")
	}
}

func TestConcentration_Herfindahl(t *testing.T) {
	records := []research.CompetitorRecord{
		{MarketShare: 0.5},
		{MarketShare: 0.5},
	}
	if got := Concentration(records); got != 0.5 {
		t.Errorf("expected HHI 0.5, got %.3f", got)
	}
	if got := Concentration(nil); got != 0 {
		t.Errorf("expected HHI 0 for no records, got %.3f", got)
	}
}

func TestBuildSnapshot_WeightedScore(t *testing.T) {
	obs := map[string][]float64{
		"pricing": {0.5, 0.5, 0.5, 0.5}, // median 0.5, 4 mentions
		"support": {-0.5, -0.5},         // median -0.5, 2 mentions
	}
	snap := BuildSnapshot(obs)

	if snap.SampleSize != 6 {
		t.Errorf("expected sample size 6, got %d", snap.SampleSize)
	}
	if snap.Themes[0].Name != "pricing" {
		t.Errorf("themes must be ordered by mentions, got %s first", snap.Themes[0].Name)
	}
	// (0.5*4 + -0.5*2) / 6 = 1/6
	want := 1.0 / 6.0
	if diff := snap.Score - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected weighted score %.4f, got %.4f", want, snap.Score)
	}
}

func TestNormalizeAssessment_FunnelOrder(t *testing.T) {
	a := NormalizeAssessment(research.MarketAssessment{TAM: 100, SAM: 250, SOM: 300})
	if a.SAM != 100 || a.SOM != 100 {
		t.Errorf("funnel must satisfy TAM >= SAM >= SOM, got SAM=%.0f SOM=%.0f", a.SAM, a.SOM)
	}
}
