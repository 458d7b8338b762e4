package testkit

import (
	"context"
	"sort"
	"sync"
	"time"

	"marketmapper/internal/errors"
	"marketmapper/models"

	"github.com/google/uuid"
)

// InMemoryUserRepository is a thread-safe map-backed user store
type InMemoryUserRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{users: make(map[uuid.UUID]*models.User)}
}

func (r *InMemoryUserRepository) GetOrCreateDefaultUser(ctx context.Context) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == "default" {
			cp := *u
			return &cp, nil
		}
	}
	u := &models.User{
		ID:        uuid.Must(uuid.NewV7()),
		Email:     "default@localhost",
		Username:  "default",
		Credits:   10,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	r.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (r *InMemoryUserRepository) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, errors.NotFound("user")
	}
	cp := *u
	return &cp, nil
}

func (r *InMemoryUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.Must(uuid.NewV7())
	}
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *InMemoryUserRepository) AdjustCredits(ctx context.Context, userID uuid.UUID, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return 0, errors.NotFound("user")
	}
	next := u.Credits + delta
	if next < 0 {
		return u.Credits, errors.InsufficientCredits(u.Credits)
	}
	u.Credits = next
	u.UpdatedAt = time.Now().UTC()
	return next, nil
}

// InMemoryProjectRepository is a thread-safe map-backed project store
type InMemoryProjectRepository struct {
	mu       sync.Mutex
	projects map[uuid.UUID]*models.Project
}

func NewInMemoryProjectRepository() *InMemoryProjectRepository {
	return &InMemoryProjectRepository{projects: make(map[uuid.UUID]*models.Project)}
}

func (r *InMemoryProjectRepository) GetProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[projectID]
	if !ok {
		return nil, errors.NotFound("project")
	}
	cp := *p
	return &cp, nil
}

func (r *InMemoryProjectRepository) CreateProject(ctx context.Context, project *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if project.ID == uuid.Nil {
		project.ID = uuid.Must(uuid.NewV7())
	}
	if project.Status == "" {
		project.Status = models.ProjectStatusDraft
	}
	project.CreatedAt = time.Now().UTC()
	project.UpdatedAt = project.CreatedAt
	cp := *project
	r.projects[project.ID] = &cp
	return nil
}

func (r *InMemoryProjectRepository) UpdateStatus(ctx context.Context, projectID uuid.UUID, status models.ProjectStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[projectID]
	if !ok {
		return errors.NotFound("project")
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryProjectRepository) SetCurrentAgent(ctx context.Context, projectID uuid.UUID, agentType *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[projectID]
	if !ok {
		return errors.NotFound("project")
	}
	p.CurrentAgent = agentType
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// InMemorySessionRepository is a thread-safe map-backed session store that
// enforces terminal-state immutability the same way the postgres adapter does
type InMemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.AgentSession
}

func NewInMemorySessionRepository() *InMemorySessionRepository {
	return &InMemorySessionRepository{sessions: make(map[uuid.UUID]*models.AgentSession)}
}

func (r *InMemorySessionRepository) CreateSession(ctx context.Context, projectID uuid.UUID, agentType string, input models.JSONBMap) (*models.AgentSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &models.AgentSession{
		ID:        uuid.Must(uuid.NewV7()),
		ProjectID: projectID,
		AgentType: agentType,
		Status:    models.SessionStatusRunning,
		Input:     input,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	r.sessions[s.ID] = s
	cp := *s
	return &cp, nil
}

func (r *InMemorySessionRepository) GetSession(ctx context.Context, sessionID uuid.UUID) (*models.AgentSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, errors.NotFound("session")
	}
	cp := *s
	return &cp, nil
}

func (r *InMemorySessionRepository) CompleteSession(ctx context.Context, sessionID uuid.UUID, output models.JSONBMap) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return errors.NotFound("session")
	}
	if s.IsTerminal() {
		return errors.DatabaseError("session is terminal and cannot be updated")
	}
	s.Status = models.SessionStatusCompleted
	s.Output = output
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemorySessionRepository) FailSession(ctx context.Context, sessionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return errors.NotFound("session")
	}
	if s.IsTerminal() {
		return errors.DatabaseError("session is terminal and cannot be updated")
	}
	s.Status = models.SessionStatusFailed
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemorySessionRepository) ListProjectSessions(ctx context.Context, projectID uuid.UUID, limit int) ([]*models.AgentSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.AgentSession
	for _, s := range r.sessions {
		if s.ProjectID == projectID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// InMemoryConversationRepository is an append-only in-memory audit log
type InMemoryConversationRepository struct {
	mu      sync.Mutex
	entries []*models.Conversation
}

func NewInMemoryConversationRepository() *InMemoryConversationRepository {
	return &InMemoryConversationRepository{}
}

func (r *InMemoryConversationRepository) Append(ctx context.Context, sessionID uuid.UUID, role models.ConversationRole, text string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := &models.Conversation{
		ID:        uuid.Must(uuid.NewV7()),
		SessionID: sessionID,
		Role:      role,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	r.entries = append(r.entries, c)
	cp := *c
	return &cp, nil
}

func (r *InMemoryConversationRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Conversation
	for _, c := range r.entries {
		if c.SessionID == sessionID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

// InMemoryResultRepository is a map-backed versioned result store
type InMemoryResultRepository struct {
	mu      sync.Mutex
	results []*models.AnalysisResult
}

func NewInMemoryResultRepository() *InMemoryResultRepository {
	return &InMemoryResultRepository{}
}

func (r *InMemoryResultRepository) Create(ctx context.Context, result *models.AnalysisResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result.ID == uuid.Nil {
		result.ID = uuid.Must(uuid.NewV7())
	}
	result.CreatedAt = time.Now().UTC()
	for _, existing := range r.results {
		if existing.ProjectID == result.ProjectID &&
			existing.AgentType == result.AgentType &&
			existing.Version == result.Version {
			return errors.DatabaseError("duplicate result version")
		}
	}
	cp := *result
	r.results = append(r.results, &cp)
	return nil
}

func (r *InMemoryResultRepository) LatestVersion(ctx context.Context, projectID uuid.UUID, agentType string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	latest := 0
	for _, res := range r.results {
		if res.ProjectID == projectID && res.AgentType == agentType && res.Version > latest {
			latest = res.Version
		}
	}
	return latest, nil
}

func (r *InMemoryResultRepository) GetLatest(ctx context.Context, projectID uuid.UUID, agentType string) (*models.AnalysisResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *models.AnalysisResult
	for _, res := range r.results {
		if res.ProjectID == projectID && res.AgentType == agentType {
			if best == nil || res.Version > best.Version {
				best = res
			}
		}
	}
	if best == nil {
		return nil, errors.NotFound("analysis result")
	}
	cp := *best
	return &cp, nil
}

func (r *InMemoryResultRepository) GetByVersion(ctx context.Context, projectID uuid.UUID, agentType string, version int) (*models.AnalysisResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range r.results {
		if res.ProjectID == projectID && res.AgentType == agentType && res.Version == version {
			cp := *res
			return &cp, nil
		}
	}
	return nil, errors.NotFound("analysis result")
}

// InMemoryLLMUsageRepository collects usage records for inspection in tests
type InMemoryLLMUsageRepository struct {
	mu      sync.Mutex
	Records []*models.LLMUsage
}

func NewInMemoryLLMUsageRepository() *InMemoryLLMUsageRepository {
	return &InMemoryLLMUsageRepository{}
}

func (r *InMemoryLLMUsageRepository) RecordUsage(ctx context.Context, usage *models.LLMUsage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *usage
	r.Records = append(r.Records, &cp)
	return nil
}

func (r *InMemoryLLMUsageRepository) Recorded() []*models.LLMUsage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.LLMUsage, len(r.Records))
	copy(out, r.Records)
	return out
}
