package orchestrator

import (
	"context"
	"sort"
	"sync"

	"marketmapper/internal"
	"marketmapper/internal/agent"
	"marketmapper/internal/errors"
	"marketmapper/models"
	"marketmapper/ports"

	"github.com/google/uuid"
)

// Orchestrator owns the money-touching path around agent execution: it
// reserves a credit before a run, persists the versioned result after a
// successful one, and refunds the credit when the run fails. Agents never see
// the credit ledger.
type Orchestrator struct {
	mu       sync.RWMutex
	registry map[string]agent.Runner

	users    ports.UserRepository
	projects ports.ProjectRepository
	results  ports.ResultRepository
	log      *internal.Logger
}

func New(
	users ports.UserRepository,
	projects ports.ProjectRepository,
	results ports.ResultRepository,
	logger *internal.Logger,
) *Orchestrator {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Orchestrator{
		registry: make(map[string]agent.Runner),
		users:    users,
		projects: projects,
		results:  results,
		log:      logger,
	}
}

// Register adds a runner under its agent type. Later registrations replace
// earlier ones.
func (o *Orchestrator) Register(r agent.Runner) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.registry[r.Type()] = r
}

// Runner returns the registered runner for an agent type
func (o *Orchestrator) Runner(agentType string) (agent.Runner, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	r, ok := o.registry[agentType]
	return r, ok
}

// AgentTypes returns the registered agent types, sorted
func (o *Orchestrator) AgentTypes() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	types := make([]string, 0, len(o.registry))
	for t := range o.registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// RunAgent executes one agent run for a project on the user's credit and
// returns the committed result together with the session that produced it.
//
// The sequence is: resolve the runner, verify the project, reserve exactly
// one credit, mark the project busy, run the agent, then either commit the
// output as the next result version or refund the credit. The project's
// current-agent marker is cleared on every exit path. The session ID is
// uuid.Nil only when the run failed before a session was created.
func (o *Orchestrator) RunAgent(
	ctx context.Context,
	userID uuid.UUID,
	projectID uuid.UUID,
	agentType string,
	input models.JSONBMap,
) (*models.AnalysisResult, uuid.UUID, error) {
	runner, ok := o.Runner(agentType)
	if !ok {
		return nil, uuid.Nil, errors.AgentNotFound(agentType)
	}
	if _, err := o.projects.GetProject(ctx, projectID); err != nil {
		return nil, uuid.Nil, err
	}

	balance, err := o.users.AdjustCredits(ctx, userID, -1)
	if err != nil {
		return nil, uuid.Nil, err
	}
	o.log.Info("[Orchestrator] reserved 1 credit for user %s (balance %d), running %s on project %s",
		userID, balance, agentType, projectID)

	if err := o.projects.SetCurrentAgent(ctx, projectID, &agentType); err != nil {
		o.refund(ctx, userID, agentType)
		return nil, uuid.Nil, errors.Wrap(err, "failed to mark project busy")
	}
	defer o.clearCurrentAgent(ctx, projectID)

	sessionID, output, runErr := runner.Run(ctx, projectID, input)
	if runErr != nil {
		o.refund(ctx, userID, agentType)
		o.log.Warn("[Orchestrator] %s run failed on project %s (session %s): %v",
			agentType, projectID, sessionID, runErr)
		return nil, sessionID, runErr
	}

	latest, err := o.results.LatestVersion(ctx, projectID, agentType)
	if err != nil {
		o.refund(ctx, userID, agentType)
		return nil, sessionID, errors.Wrap(err, "failed to resolve result version")
	}
	result := &models.AnalysisResult{
		ProjectID: projectID,
		AgentType: agentType,
		Payload:   output,
		Version:   latest + 1,
	}
	if err := o.results.Create(ctx, result); err != nil {
		o.refund(ctx, userID, agentType)
		return nil, sessionID, errors.Wrap(err, "failed to persist result")
	}

	o.log.Info("[Orchestrator] %s completed on project %s: result version %d (session %s)",
		agentType, projectID, result.Version, sessionID)
	return result, sessionID, nil
}

// RunSequence executes agents in order, feeding the same input to each.
// It stops at the first failure and returns the results that completed before
// it, alongside the failure.
func (o *Orchestrator) RunSequence(
	ctx context.Context,
	userID uuid.UUID,
	projectID uuid.UUID,
	agentTypes []string,
	input models.JSONBMap,
) ([]*models.AnalysisResult, error) {
	completed := make([]*models.AnalysisResult, 0, len(agentTypes))
	for _, agentType := range agentTypes {
		result, _, err := o.RunAgent(ctx, userID, projectID, agentType, input)
		if err != nil {
			return completed, err
		}
		completed = append(completed, result)
	}
	return completed, nil
}

// refund restores the reserved credit after a failed run. A refund failure is
// logged, not returned: the run error is the one callers need to see.
func (o *Orchestrator) refund(ctx context.Context, userID uuid.UUID, agentType string) {
	if _, err := o.users.AdjustCredits(ctx, userID, 1); err != nil {
		o.log.Error("[Orchestrator] credit refund failed for user %s after %s run: %v",
			userID, agentType, err)
	}
}

func (o *Orchestrator) clearCurrentAgent(ctx context.Context, projectID uuid.UUID) {
	if err := o.projects.SetCurrentAgent(ctx, projectID, nil); err != nil {
		o.log.Error("[Orchestrator] could not clear current agent on project %s: %v", projectID, err)
	}
}
