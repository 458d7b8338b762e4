package testkit

import (
	"context"
	"time"

	llmadapter "marketmapper/adapters/llm"
	"marketmapper/ai"
	"marketmapper/internal"
	"marketmapper/internal/agent"
	"marketmapper/internal/cache"
	"marketmapper/internal/orchestrator"
	"marketmapper/internal/research"
	"marketmapper/internal/usage"
	"marketmapper/models"

	researchdomain "marketmapper/domain/research"

	"github.com/google/uuid"
)

// Kit wires the full analysis stack against in-memory repositories, offline
// research sources and a scripted LLM client. Every test-facing piece is
// exported so tests can script responses and inspect state directly.
type Kit struct {
	Users         *InMemoryUserRepository
	Projects      *InMemoryProjectRepository
	Sessions      *InMemorySessionRepository
	Conversations *InMemoryConversationRepository
	Results       *InMemoryResultRepository
	UsageRecords  *InMemoryLLMUsageRepository

	LLM          *llmadapter.MockLLMClient
	Research     *research.Service
	Agent        *agent.MarketMapper
	Orchestrator *orchestrator.Orchestrator
}

// NewKit builds a fully wired kit. The research TTLs are long enough that a
// test never crosses an expiry unless it injects its own clock.
func NewKit() *Kit {
	logger := internal.NewLogger(internal.LogLevelError)

	users := NewInMemoryUserRepository()
	projects := NewInMemoryProjectRepository()
	sessions := NewInMemorySessionRepository()
	conversations := NewInMemoryConversationRepository()
	results := NewInMemoryResultRepository()
	usageRepo := NewInMemoryLLMUsageRepository()

	ttl := time.Hour
	researchSvc := research.NewService(
		research.NewCompetitorProvider(research.OfflineCompetitorSource{},
			cache.New[researchdomain.Sourced[researchdomain.CompetitorLandscape]](), ttl, logger),
		research.NewMarketProvider(research.OfflineMarketSource{},
			cache.New[researchdomain.Sourced[researchdomain.MarketAssessment]](), ttl, logger),
		research.NewSentimentProvider(research.OfflineSentimentSource{},
			cache.New[researchdomain.Sourced[researchdomain.SentimentSnapshot]](), ttl, logger),
		research.NewWebIntelProvider(research.OfflineWebSource{},
			cache.New[researchdomain.Sourced[researchdomain.WebIntelligence]](), ttl, logger),
		logger,
	)

	llm := &llmadapter.MockLLMClient{}
	gateway := ai.NewGateway(llm, 4000, 10*time.Second, logger)
	usageSvc := usage.NewService(usageRepo, logger)

	mapper := agent.NewMarketMapper(sessions, conversations, researchSvc, gateway, usageSvc, logger)

	orch := orchestrator.New(users, projects, results, logger)
	orch.Register(mapper)

	return &Kit{
		Users:         users,
		Projects:      projects,
		Sessions:      sessions,
		Conversations: conversations,
		Results:       results,
		UsageRecords:  usageRepo,
		LLM:           llm,
		Research:      researchSvc,
		Agent:         mapper,
		Orchestrator:  orch,
	}
}

// SeedUser creates a user with the given credit balance
func (k *Kit) SeedUser(ctx context.Context, credits int) *models.User {
	u := &models.User{
		Email:    "tester@localhost",
		Username: "tester",
		Credits:  credits,
		IsActive: true,
	}
	if err := k.Users.CreateUser(ctx, u); err != nil {
		panic(err)
	}
	return u
}

// SeedProject creates an active project owned by the given user
func (k *Kit) SeedProject(ctx context.Context, ownerID uuid.UUID) *models.Project {
	p := &models.Project{
		OwnerID: ownerID,
		Name:    "test project",
		Status:  models.ProjectStatusActive,
	}
	if err := k.Projects.CreateProject(ctx, p); err != nil {
		panic(err)
	}
	return p
}
