package agent_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"

	llmadapter "marketmapper/adapters/llm"
	"marketmapper/ai"
	"marketmapper/domain/analysis"
	researchdomain "marketmapper/domain/research"
	"marketmapper/internal"
	"marketmapper/internal/agent"
	"marketmapper/internal/cache"
	"marketmapper/internal/errors"
	"marketmapper/internal/research"
	"marketmapper/internal/testkit"
	"marketmapper/internal/usage"
	"marketmapper/models"

	"github.com/google/uuid"
)

func validInput() models.JSONBMap {
	return models.JSONBMap{
		"business_idea": "left-handed ergonomic scissors",
		"industry":      "consumer goods",
		"geography":     "EU",
		"keywords":      []interface{}{"scissors", "ergonomic"},
	}
}

func TestRunCompletesSessionAndAuditTrail(t *testing.T) {
	kit := testkit.NewKit()
	ctx := context.Background()
	kit.LLM.Responses = []string{`{"summary": "Niche market with weak incumbents.", "recommendations": ["validate retail channels"]}`}

	projectID := uuid.Must(uuid.NewV7())
	sessionID, output, err := kit.Agent.Run(ctx, projectID, validInput())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if sessionID == uuid.Nil {
		t.Fatal("expected a session ID")
	}

	session, err := kit.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if session.Status != models.SessionStatusCompleted {
		t.Errorf("session status = %s, want completed", session.Status)
	}
	if session.Output == nil {
		t.Error("completed session should store its output")
	}

	entries, err := kit.Conversations.ListBySession(ctx, sessionID)
	if err != nil {
		t.Fatalf("ListBySession failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(entries))
	}
	if !strings.HasPrefix(entries[0].Text, "started") {
		t.Errorf("first entry = %q, want started marker", entries[0].Text)
	}
	if !strings.HasPrefix(entries[1].Text, "completed") {
		t.Errorf("second entry = %q, want completed marker", entries[1].Text)
	}

	if output["summary"] != "Niche market with weak incumbents." {
		t.Errorf("summary = %v", output["summary"])
	}
	if output["schema_version"] == nil {
		t.Error("output missing schema_version")
	}
	if output["competitors"] == nil {
		t.Error("competitors must be present even when the model omits them")
	}
	score, ok := output["confidence_score"].(float64)
	if !ok || score <= 0 || score > 1 {
		t.Errorf("confidence_score = %v, want value in (0,1]", output["confidence_score"])
	}
}

func TestRunRejectsInvalidInputBeforeCreatingSession(t *testing.T) {
	kit := testkit.NewKit()
	ctx := context.Background()

	input := validInput()
	delete(input, "business_idea")

	sessionID, _, err := kit.Agent.Run(ctx, uuid.Must(uuid.NewV7()), input)
	if !errors.HasCode(err, errors.CodeValidationError) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if sessionID != uuid.Nil {
		t.Error("no session should exist for rejected input")
	}
	if kit.LLM.Calls != 0 {
		t.Errorf("LLM called %d times for rejected input", kit.LLM.Calls)
	}
}

func TestRunAcceptsAliasedInputKeys(t *testing.T) {
	kit := testkit.NewKit()
	ctx := context.Background()
	kit.LLM.Responses = []string{`{"summary": "ok"}`}

	input := models.JSONBMap{
		"businessIdea": "subscription plant care",
		"sector":       "horticulture",
	}
	if _, _, err := kit.Agent.Run(ctx, uuid.Must(uuid.NewV7()), input); err != nil {
		t.Fatalf("aliased input rejected: %v", err)
	}
}

func TestRunRetriesOnceOnUnparseableResponse(t *testing.T) {
	kit := testkit.NewKit()
	ctx := context.Background()
	kit.LLM.Responses = []string{
		"I'd be happy to help, but here is my analysis in prose.",
		`{"summary": "Recovered on retry."}`,
	}

	sessionID, output, err := kit.Agent.Run(ctx, uuid.Must(uuid.NewV7()), validInput())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if kit.LLM.Calls != 2 {
		t.Errorf("LLM calls = %d, want 2", kit.LLM.Calls)
	}
	last := kit.LLM.LastMessages[len(kit.LLM.LastMessages)-1]
	if !strings.Contains(last.Content, "valid JSON") {
		t.Errorf("retry should append a strict JSON directive, got %q", last.Content)
	}
	if output["summary"] != "Recovered on retry." {
		t.Errorf("summary = %v", output["summary"])
	}

	session, _ := kit.Sessions.GetSession(ctx, sessionID)
	if session.Status != models.SessionStatusCompleted {
		t.Errorf("session status = %s, want completed", session.Status)
	}
}

func TestRunFailsSessionAfterSecondUnparseableResponse(t *testing.T) {
	kit := testkit.NewKit()
	ctx := context.Background()
	kit.LLM.Responses = []string{"still prose", "more prose"}

	sessionID, _, err := kit.Agent.Run(ctx, uuid.Must(uuid.NewV7()), validInput())
	if !errors.HasCode(err, errors.CodeParseError) {
		t.Fatalf("expected PARSE_ERROR, got %v", err)
	}
	if kit.LLM.Calls != 2 {
		t.Errorf("LLM calls = %d, want exactly 2 (one retry)", kit.LLM.Calls)
	}

	session, getErr := kit.Sessions.GetSession(ctx, sessionID)
	if getErr != nil {
		t.Fatalf("GetSession failed: %v", getErr)
	}
	if session.Status != models.SessionStatusFailed {
		t.Errorf("session status = %s, want failed", session.Status)
	}

	entries, _ := kit.Conversations.ListBySession(ctx, sessionID)
	var sawFailure bool
	for _, e := range entries {
		if strings.HasPrefix(e.Text, "failed:") {
			sawFailure = true
		}
	}
	if !sawFailure {
		t.Error("audit log missing failure entry")
	}
}

func TestRunRecordsTokenUsage(t *testing.T) {
	kit := testkit.NewKit()
	ctx := context.Background()
	kit.LLM.Responses = []string{`{"summary": "ok"}`}

	if _, _, err := kit.Agent.Run(ctx, uuid.Must(uuid.NewV7()), validInput()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	records := kit.UsageRecords.Recorded()
	if len(records) != 1 {
		t.Fatalf("usage records = %d, want 1", len(records))
	}
	if records[0].TotalTokens != 150 {
		t.Errorf("total tokens = %d, want 150", records[0].TotalTokens)
	}
	if records[0].SessionID == nil {
		t.Error("usage record should reference its session")
	}
}

func TestRunInfersModeFromAnswers(t *testing.T) {
	kit := testkit.NewKit()
	ctx := context.Background()
	kit.LLM.Responses = []string{`{"summary": "deep dive"}`}

	input := validInput()
	input["answers"] = map[string]interface{}{
		"target_customer": "left-handed crafters",
		"price_point":     "premium",
		"channel":         "online retail",
	}

	_, output, err := kit.Agent.Run(ctx, uuid.Must(uuid.NewV7()), input)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if output["mode"] != "deep_analysis" {
		t.Errorf("mode = %v, want deep_analysis for 3 answered questions", output["mode"])
	}
}

// Every source variant fails, so every collaborator settles on its default.
type deadCompetitorSource struct{}
type deadMarketSource struct{}
type deadSentimentSource struct{}
type deadWebSource struct{}

func (deadCompetitorSource) Candidates(ctx context.Context, subject researchdomain.Subject) ([]researchdomain.CompetitorRecord, error) {
	return nil, stderrors.New("offline")
}
func (deadMarketSource) Assessment(ctx context.Context, subject researchdomain.Subject) (researchdomain.MarketAssessment, error) {
	return researchdomain.MarketAssessment{}, stderrors.New("offline")
}
func (deadSentimentSource) Observations(ctx context.Context, subject researchdomain.Subject) (map[string][]float64, error) {
	return nil, stderrors.New("offline")
}
func (deadWebSource) Signals(ctx context.Context, subject researchdomain.Subject) ([]researchdomain.ChannelSignal, []string, error) {
	return nil, nil, stderrors.New("offline")
}

func TestRunSurvivesAllCollaboratorsOffline(t *testing.T) {
	logger := internal.NewLogger(internal.LogLevelError)
	deadResearch := research.NewService(
		research.NewCompetitorProvider(deadCompetitorSource{},
			cache.New[researchdomain.Sourced[researchdomain.CompetitorLandscape]](), time.Hour, logger),
		research.NewMarketProvider(deadMarketSource{},
			cache.New[researchdomain.Sourced[researchdomain.MarketAssessment]](), time.Hour, logger),
		research.NewSentimentProvider(deadSentimentSource{},
			cache.New[researchdomain.Sourced[researchdomain.SentimentSnapshot]](), time.Hour, logger),
		research.NewWebIntelProvider(deadWebSource{},
			cache.New[researchdomain.Sourced[researchdomain.WebIntelligence]](), time.Hour, logger),
		logger,
	)

	sessions := testkit.NewInMemorySessionRepository()
	conversations := testkit.NewInMemoryConversationRepository()
	llm := &llmadapter.MockLLMClient{Responses: []string{`{"summary": "Thin signal, proceed carefully."}`}}
	gateway := ai.NewGateway(llm, 4000, 10*time.Second, logger)
	usageSvc := usage.NewService(testkit.NewInMemoryLLMUsageRepository(), logger)
	mapper := agent.NewMarketMapper(sessions, conversations, deadResearch, gateway, usageSvc, logger)

	input := models.JSONBMap{
		"businessIdea":   "A subscription box for left-handed scissors",
		"industry":       "ecommerce",
		"processingMode": "discovery",
	}
	_, output, err := mapper.Run(context.Background(), uuid.Must(uuid.NewV7()), input)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	competitors, ok := output["competitors"].([]interface{})
	if !ok {
		t.Fatalf("competitors = %T, want a typed list", output["competitors"])
	}
	if len(competitors) != 0 {
		t.Errorf("competitors = %d entries, want empty list from dead collaborators", len(competitors))
	}
	score, ok := output["confidence_score"].(float64)
	if !ok || score < 0 || score > 1 {
		t.Errorf("confidence_score = %v, want non-null value in [0,1]", output["confidence_score"])
	}
}

func TestRunHonorsExplicitProcessingMode(t *testing.T) {
	kit := testkit.NewKit()
	ctx := context.Background()
	kit.LLM.Responses = []string{`{"summary": "strategy"}`}

	input := validInput()
	input["processing_mode"] = "strategy"

	_, output, err := kit.Agent.Run(ctx, uuid.Must(uuid.NewV7()), input)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if output["mode"] != "strategy" {
		t.Errorf("mode = %v, want strategy", output["mode"])
	}
}

func answerSet(n int) map[string]string {
	answers := make(map[string]string, n)
	for i := 0; i < n; i++ {
		answers[fmt.Sprintf("q%d", i+1)] = "answered"
	}
	return answers
}

func TestRecommendedMode(t *testing.T) {
	kit := testkit.NewKit()

	tests := []struct {
		name    string
		answers map[string]string
		want    analysis.Mode
	}{
		{"no answers", nil, analysis.ModeDiscovery},
		{"one answer", answerSet(1), analysis.ModeQuestions},
		{"two answers", answerSet(2), analysis.ModeQuestions},
		{"three answers", answerSet(3), analysis.ModeDeepAnalysis},
		{"five answers", answerSet(5), analysis.ModeDeepAnalysis},
		{"six answers", answerSet(6), analysis.ModeStrategy},
		{"nine answers", answerSet(9), analysis.ModeStrategy},
		{
			"blank answers do not count",
			map[string]string{"q1": "yes", "q2": "no", "q3": ""},
			analysis.ModeQuestions,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := analysis.Input{BusinessIdea: "scissors", Industry: "consumer goods", Answers: tt.answers}
			if got := kit.Agent.RecommendedMode(in); got != tt.want {
				t.Errorf("RecommendedMode(%d answers) = %s, want %s", len(tt.answers), got, tt.want)
			}
		})
	}
}

func TestHasEnoughInformation(t *testing.T) {
	kit := testkit.NewKit()

	tests := []struct {
		name    string
		mode    analysis.Mode
		answers map[string]string
		want    bool
	}{
		{"discovery needs nothing", analysis.ModeDiscovery, nil, true},
		{"questions needs nothing", analysis.ModeQuestions, nil, true},
		{"deep analysis below threshold", analysis.ModeDeepAnalysis, answerSet(2), false},
		{"deep analysis at threshold", analysis.ModeDeepAnalysis, answerSet(3), true},
		{"validation below threshold", analysis.ModeValidation, answerSet(2), false},
		{"validation at threshold", analysis.ModeValidation, answerSet(3), true},
		{"strategy below threshold", analysis.ModeStrategy, answerSet(5), false},
		{"strategy at threshold", analysis.ModeStrategy, answerSet(6), true},
		{
			"blank answers do not count toward the threshold",
			analysis.ModeDeepAnalysis,
			map[string]string{"q1": "yes", "q2": "no", "q3": ""},
			false,
		},
		// With no explicit mode the inferred one is judged, and three
		// answers infer deep_analysis, which three answers satisfy.
		{"inferred mode at threshold", "", answerSet(3), true},
		{"inferred strategy at threshold", "", answerSet(6), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := analysis.Input{
				BusinessIdea:   "scissors",
				Industry:       "consumer goods",
				ProcessingMode: tt.mode,
				Answers:        tt.answers,
			}
			if got := kit.Agent.HasEnoughInformation(in); got != tt.want {
				t.Errorf("HasEnoughInformation(mode=%q, %d answers) = %v, want %v", tt.mode, len(tt.answers), got, tt.want)
			}
		})
	}
}

func TestReadinessPreflight(t *testing.T) {
	kit := testkit.NewKit()

	input := validInput()
	input["processing_mode"] = "strategy"
	input["answers"] = map[string]interface{}{"q1": "direct to consumer", "q2": "EU only"}

	readiness, err := kit.Agent.Readiness(input)
	if err != nil {
		t.Fatalf("Readiness failed: %v", err)
	}
	if readiness.Ready {
		t.Error("two answers must not be enough for strategy mode")
	}
	if readiness.Mode != analysis.ModeStrategy {
		t.Errorf("mode = %s, want strategy", readiness.Mode)
	}
	if readiness.RecommendedMode != analysis.ModeQuestions {
		t.Errorf("recommended mode = %s, want questions for two answers", readiness.RecommendedMode)
	}
	if readiness.AnsweredCount != 2 {
		t.Errorf("answered count = %d, want 2", readiness.AnsweredCount)
	}
	if kit.LLM.Calls != 0 {
		t.Errorf("preflight made %d model calls, want none", kit.LLM.Calls)
	}
}

func TestReadinessRejectsInvalidInput(t *testing.T) {
	kit := testkit.NewKit()

	_, err := kit.Agent.Readiness(models.JSONBMap{"industry": "consumer goods"})
	if err == nil {
		t.Fatal("expected a validation error for the missing business idea")
	}
	if !errors.HasCode(err, errors.CodeValidationError) {
		t.Errorf("error code = %v, want VALIDATION_ERROR", err)
	}
}
