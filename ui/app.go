package ui

import (
	"net/http"

	"marketmapper/internal"
	"marketmapper/internal/orchestrator"
	"marketmapper/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// App is the HTTP surface over the analysis pipeline
type App struct {
	router        *chi.Mux
	orchestrator  *orchestrator.Orchestrator
	users         ports.UserRepository
	projects      ports.ProjectRepository
	sessions      ports.SessionRepository
	conversations ports.ConversationRepository
	results       ports.ResultRepository
	log           *internal.Logger
}

// NewApp wires the router around the orchestrator and repositories
func NewApp(
	orch *orchestrator.Orchestrator,
	users ports.UserRepository,
	projects ports.ProjectRepository,
	sessions ports.SessionRepository,
	conversations ports.ConversationRepository,
	results ports.ResultRepository,
	logger *internal.Logger,
) *App {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	app := &App{
		router:        chi.NewRouter(),
		orchestrator:  orch,
		users:         users,
		projects:      projects,
		sessions:      sessions,
		conversations: conversations,
		results:       results,
		log:           logger,
	}
	app.setupMiddleware()
	app.setupRoutes()
	return app
}

// Router returns the http handler for serving
func (a *App) Router() http.Handler {
	return a.router
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

func (a *App) setupRoutes() {
	a.router.Get("/health", a.handleHealth)

	a.router.Post("/api/projects", a.handleCreateProject)
	a.router.Get("/api/projects/{projectID}", a.handleGetProject)

	a.router.Post("/api/agents/{agentType}/readiness", a.handleAgentReadiness)

	a.router.Post("/api/projects/{projectID}/agents/{agentType}/run", a.handleRunAgent)
	a.router.Get("/api/projects/{projectID}/results/{agentType}", a.handleGetResult)
	a.router.Get("/api/projects/{projectID}/sessions", a.handleListSessions)
	a.router.Get("/api/sessions/{sessionID}", a.handleGetSession)

	a.router.Get("/api/projects/{projectID}/report", a.handleReport)
	a.router.Get("/api/projects/{projectID}/export", a.handleExport)
}
