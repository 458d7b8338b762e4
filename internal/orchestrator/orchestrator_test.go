package orchestrator_test

import (
	"context"
	"testing"

	"marketmapper/internal/agent"
	"marketmapper/internal/errors"
	"marketmapper/internal/testkit"
	"marketmapper/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validResponse = `{"summary": "Fragmented market, no dominant incumbent."}`

func runInput() models.JSONBMap {
	return models.JSONBMap{
		"business_idea": "left-handed ergonomic scissors",
		"industry":      "consumer goods",
	}
}

func TestRunAgentChargesOneCreditAndPersistsVersionedResult(t *testing.T) {
	kit := testkit.NewKit()
	ctx := context.Background()
	kit.LLM.Responses = []string{validResponse}

	user := kit.SeedUser(ctx, 5)
	project := kit.SeedProject(ctx, user.ID)

	result, sessionID, err := kit.Orchestrator.RunAgent(ctx, user.ID, project.ID, agent.TypeMarketMapper, runInput())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Version)
	assert.Equal(t, agent.TypeMarketMapper, result.AgentType)

	session, err := kit.Sessions.GetSession(ctx, sessionID)
	require.NoError(t, err, "returned session ID must resolve")
	assert.Equal(t, project.ID, session.ProjectID)
	assert.Equal(t, models.SessionStatusCompleted, session.Status)

	after, err := kit.Users.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, after.Credits, "one credit spent on success")

	// Version increments on the next run of the same pair.
	result2, _, err := kit.Orchestrator.RunAgent(ctx, user.ID, project.ID, agent.TypeMarketMapper, runInput())
	require.NoError(t, err)
	assert.Equal(t, 2, result2.Version)

	latest, err := kit.Results.GetLatest(ctx, project.ID, agent.TypeMarketMapper)
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Version)
}

func TestRunAgentRefundsCreditOnFailure(t *testing.T) {
	kit := testkit.NewKit()
	ctx := context.Background()
	kit.LLM.Responses = []string{"prose, not json", "still prose"}

	user := kit.SeedUser(ctx, 5)
	project := kit.SeedProject(ctx, user.ID)

	_, _, err := kit.Orchestrator.RunAgent(ctx, user.ID, project.ID, agent.TypeMarketMapper, runInput())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeParseError))

	after, err := kit.Users.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, after.Credits, "failed run must be free")

	_, err = kit.Results.GetLatest(ctx, project.ID, agent.TypeMarketMapper)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound), "no result for a failed run")
}

func TestRunAgentRejectsWhenOutOfCredits(t *testing.T) {
	kit := testkit.NewKit()
	ctx := context.Background()

	user := kit.SeedUser(ctx, 0)
	project := kit.SeedProject(ctx, user.ID)

	_, _, err := kit.Orchestrator.RunAgent(ctx, user.ID, project.ID, agent.TypeMarketMapper, runInput())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInsufficientCredits))
	assert.Equal(t, 0, kit.LLM.Calls, "no model call without a reserved credit")
}

func TestRunAgentUnknownType(t *testing.T) {
	kit := testkit.NewKit()
	ctx := context.Background()

	user := kit.SeedUser(ctx, 5)
	project := kit.SeedProject(ctx, user.ID)

	_, _, err := kit.Orchestrator.RunAgent(ctx, user.ID, project.ID, "nonexistent_agent", runInput())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeAgentNotFound))

	after, _ := kit.Users.GetUserByID(ctx, user.ID)
	assert.Equal(t, 5, after.Credits, "unknown agent must not charge")
}

func TestRunAgentUnknownProject(t *testing.T) {
	kit := testkit.NewKit()
	ctx := context.Background()

	user := kit.SeedUser(ctx, 5)

	_, _, err := kit.Orchestrator.RunAgent(ctx, user.ID, uuid.Must(uuid.NewV7()), agent.TypeMarketMapper, runInput())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))

	after, _ := kit.Users.GetUserByID(ctx, user.ID)
	assert.Equal(t, 5, after.Credits)
}

func TestRunAgentClearsCurrentAgentOnAllPaths(t *testing.T) {
	kit := testkit.NewKit()
	ctx := context.Background()

	user := kit.SeedUser(ctx, 5)
	project := kit.SeedProject(ctx, user.ID)

	kit.LLM.Responses = []string{validResponse}
	_, _, err := kit.Orchestrator.RunAgent(ctx, user.ID, project.ID, agent.TypeMarketMapper, runInput())
	require.NoError(t, err)

	p, err := kit.Projects.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Nil(t, p.CurrentAgent, "marker must be cleared after success")

	kit.LLM.Responses = []string{"prose", "prose"}
	kit.LLM.Calls = 0
	_, _, err = kit.Orchestrator.RunAgent(ctx, user.ID, project.ID, agent.TypeMarketMapper, runInput())
	require.Error(t, err)

	p, err = kit.Projects.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Nil(t, p.CurrentAgent, "marker must be cleared after failure")
}

func TestRunSequenceStopsAtFirstFailureAndKeepsCompletedResults(t *testing.T) {
	kit := testkit.NewKit()
	ctx := context.Background()

	user := kit.SeedUser(ctx, 5)
	project := kit.SeedProject(ctx, user.ID)

	// First run succeeds, second run of the sequence fails to parse.
	kit.LLM.Responses = []string{validResponse, "prose", "prose"}

	sequence := []string{agent.TypeMarketMapper, agent.TypeMarketMapper}
	completed, err := kit.Orchestrator.RunSequence(ctx, user.ID, project.ID, sequence, runInput())
	require.Error(t, err)
	require.Len(t, completed, 1, "results completed before the failure survive")
	assert.Equal(t, 1, completed[0].Version)

	latest, err := kit.Results.GetLatest(ctx, project.ID, agent.TypeMarketMapper)
	require.NoError(t, err)
	assert.Equal(t, 1, latest.Version)

	after, _ := kit.Users.GetUserByID(ctx, user.ID)
	assert.Equal(t, 4, after.Credits, "one credit for the success, refund for the failure")
}

func TestAgentTypesListsRegistrations(t *testing.T) {
	kit := testkit.NewKit()
	assert.Equal(t, []string{agent.TypeMarketMapper}, kit.Orchestrator.AgentTypes())
}
