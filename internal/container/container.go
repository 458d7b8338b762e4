package container

import (
	"context"

	llmadapter "marketmapper/adapters/llm"
	"marketmapper/adapters/postgres"
	"marketmapper/ai"
	"marketmapper/internal"
	"marketmapper/internal/agent"
	"marketmapper/internal/cache"
	"marketmapper/internal/config"
	"marketmapper/internal/errors"
	"marketmapper/internal/migration"
	"marketmapper/internal/orchestrator"
	"marketmapper/internal/research"
	"marketmapper/internal/usage"
	"marketmapper/ports"

	researchdomain "marketmapper/domain/research"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Log    *internal.Logger

	DB *sqlx.DB

	UserRepo         ports.UserRepository
	ProjectRepo      ports.ProjectRepository
	SessionRepo      ports.SessionRepository
	ConversationRepo ports.ConversationRepository
	ResultRepo       ports.ResultRepository
	UsageRepo        ports.LLMUsageRepository

	Research     *research.Service
	Gateway      *ai.Gateway
	Usage        *usage.Service
	Orchestrator *orchestrator.Orchestrator
}

// New connects the database, runs migrations and wires the full stack
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if cfg.Database.URL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	runner := migration.NewRunner()
	if err := runner.Run(context.Background(), db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrations failed")
	}
	logger.Info("[Container] schema migrated (version %s)", runner.Version())

	c := &Container{
		Config:           cfg,
		Log:              logger,
		DB:               db,
		UserRepo:         postgres.NewUserRepository(db),
		ProjectRepo:      postgres.NewProjectRepository(db),
		SessionRepo:      postgres.NewSessionRepository(db),
		ConversationRepo: postgres.NewConversationRepository(db),
		ResultRepo:       postgres.NewResultRepository(db),
		UsageRepo:        postgres.NewLLMUsageRepository(db),
	}

	rc := cfg.Research
	c.Research = research.NewService(
		research.NewCompetitorProvider(research.OfflineCompetitorSource{},
			cache.New[researchdomain.Sourced[researchdomain.CompetitorLandscape]](),
			rc.CompetitorTTL, logger).WithDeadline(rc.ProviderDeadline),
		research.NewMarketProvider(research.OfflineMarketSource{},
			cache.New[researchdomain.Sourced[researchdomain.MarketAssessment]](),
			rc.MarketTTL, logger).WithDeadline(rc.ProviderDeadline),
		research.NewSentimentProvider(research.OfflineSentimentSource{},
			cache.New[researchdomain.Sourced[researchdomain.SentimentSnapshot]](),
			rc.SentimentTTL, logger).WithDeadline(rc.ProviderDeadline),
		research.NewWebIntelProvider(research.OfflineWebSource{},
			cache.New[researchdomain.Sourced[researchdomain.WebIntelligence]](),
			rc.WebIntelTTL, logger).WithDeadline(rc.ProviderDeadline),
		logger,
	)

	client := llmadapter.NewOpenAIClient(llmadapter.Config{
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
	})
	c.Gateway = ai.NewGateway(client, cfg.AI.MaxTokens, cfg.AI.Timeout, logger)
	c.Usage = usage.NewService(c.UsageRepo, logger)

	mapper := agent.NewMarketMapper(
		c.SessionRepo, c.ConversationRepo, c.Research, c.Gateway, c.Usage, logger)

	c.Orchestrator = orchestrator.New(c.UserRepo, c.ProjectRepo, c.ResultRepo, logger)
	c.Orchestrator.Register(mapper)

	return c, nil
}

// Bootstrap ensures the default user exists so a fresh deployment can run
func (c *Container) Bootstrap(ctx context.Context) error {
	user, err := c.UserRepo.GetOrCreateDefaultUser(ctx)
	if err != nil {
		return errors.Wrap(err, "default user bootstrap failed")
	}
	if user.Credits == 0 && c.Config.Credits.DefaultCredits > 0 {
		if _, err := c.UserRepo.AdjustCredits(ctx, user.ID, c.Config.Credits.DefaultCredits); err != nil {
			return errors.Wrap(err, "default credit grant failed")
		}
	}
	c.Log.Info("[Container] default user ready: %s (%d credits)", user.ID, user.Credits)
	return nil
}

// Close releases held resources
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
