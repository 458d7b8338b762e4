package ai

import (
	"strings"
	"testing"

	"marketmapper/domain/analysis"
	"marketmapper/domain/research"
)

func TestInferMode_AnswerThresholds(t *testing.T) {
	cases := []struct {
		answers map[string]string
		want    analysis.Mode
	}{
		{nil, analysis.ModeDiscovery},
		{map[string]string{}, analysis.ModeDiscovery},
		{map[string]string{"a": "x"}, analysis.ModeQuestions},
		{map[string]string{"a": "x", "b": "y"}, analysis.ModeQuestions},
		{map[string]string{"a": "x", "b": "y", "c": "z"}, analysis.ModeDeepAnalysis},
		{map[string]string{"a": "1", "b": "2", "c": "3", "d": "4", "e": "5"}, analysis.ModeDeepAnalysis},
		{map[string]string{"a": "1", "b": "2", "c": "3", "d": "4", "e": "5", "f": "6"}, analysis.ModeStrategy},
		{map[string]string{"a": "1", "b": "2", "c": "3", "d": "4", "e": "5", "f": "6", "g": "7"}, analysis.ModeStrategy},
		// empty answers don't count
		{map[string]string{"a": "", "b": ""}, analysis.ModeDiscovery},
	}
	for _, tc := range cases {
		if got := InferMode(tc.answers); got != tc.want {
			t.Errorf("InferMode(%v) = %s, want %s", tc.answers, got, tc.want)
		}
	}
}

func TestBuildPrompt_QuestionsModeListsAnsweredKeys(t *testing.T) {
	input := analysis.Input{
		BusinessIdea: "left-handed scissors box",
		Industry:     "ecommerce",
		Answers:      map[string]string{"target_customer": "lefties", "pricing": ""},
	}
	req := BuildPrompt(analysis.ModeQuestions, input, research.Bundle{})

	user := req.Messages[0].Content
	if !strings.Contains(user, "target_customer") {
		t.Error("answered key must appear in the do-not-repeat list")
	}
	if strings.Contains(user, "pricing,") || strings.Contains(user, ", pricing") {
		t.Error("empty answers must not count as answered")
	}
}

func TestBuildPrompt_ModeSelectsDataSubset(t *testing.T) {
	bundle := research.Bundle{
		Competitors: research.Sourced[research.CompetitorLandscape]{Value: research.CompetitorLandscape{
			Competitors: []research.Competitor{{Name: "Rival", Segment: research.SegmentDirect, Similarity: 0.9}},
		}, Confidence: 0.8},
		Market: research.Sourced[research.MarketAssessment]{Value: research.MarketAssessment{TAM: 1000}, Confidence: 0.7},
		Sentiment: research.Sourced[research.SentimentSnapshot]{Value: research.SentimentSnapshot{
			Score: 0.4, SampleSize: 30,
		}, Confidence: 0.6},
		WebIntel: research.Sourced[research.WebIntelligence]{Value: research.WebIntelligence{Mentions: 200}, Confidence: 0.5},
	}
	input := analysis.Input{BusinessIdea: "x", Industry: "ecommerce"}

	discovery := BuildPrompt(analysis.ModeDiscovery, input, bundle).Messages[0].Content
	if !strings.Contains(discovery, "COMPETITORS") || !strings.Contains(discovery, "MARKET") {
		t.Error("discovery mode must include competitor and market sections")
	}
	if strings.Contains(discovery, "SENTIMENT") || strings.Contains(discovery, "WEB SIGNALS") {
		t.Error("discovery mode must not include sentiment or web sections")
	}

	deep := BuildPrompt(analysis.ModeDeepAnalysis, input, bundle).Messages[0].Content
	for _, section := range []string{"COMPETITORS", "MARKET", "SENTIMENT", "WEB SIGNALS"} {
		if !strings.Contains(deep, section) {
			t.Errorf("deep_analysis mode must include %s section", section)
		}
	}

	questions := BuildPrompt(analysis.ModeQuestions, input, bundle).Messages[0].Content
	if strings.Contains(questions, "MARKET (") {
		t.Error("questions mode must not include the market section")
	}
}

func TestBuildPrompt_Pure(t *testing.T) {
	input := analysis.Input{BusinessIdea: "x", Industry: "y", Answers: map[string]string{"a": "1"}}
	a := BuildPrompt(analysis.ModeStrategy, input, research.Bundle{})
	b := BuildPrompt(analysis.ModeStrategy, input, research.Bundle{})
	if a.Messages[0].Content != b.Messages[0].Content || a.System != b.System {
		t.Error("BuildPrompt must be deterministic over its arguments")
	}
}

func TestFilterAnsweredQuestions(t *testing.T) {
	questions := []analysis.Question{
		{Key: "target_customer", Text: "Who is the customer?"},
		{Key: "pricing", Text: "What does it cost?"},
	}
	got := FilterAnsweredQuestions(questions, map[string]string{"target_customer": "x"})

	if len(got) != 1 {
		t.Fatalf("expected 1 question after filtering, got %d", len(got))
	}
	if got[0].Key != "pricing" {
		t.Errorf("expected pricing to survive, got %s", got[0].Key)
	}

	// An empty answer is not an answer.
	got = FilterAnsweredQuestions(questions, map[string]string{"pricing": ""})
	if len(got) != 2 {
		t.Errorf("empty answer must not suppress a question, got %d", len(got))
	}
}
