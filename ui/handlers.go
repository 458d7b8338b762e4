package ui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"marketmapper/internal/agent"
	"marketmapper/internal/errors"
	"marketmapper/internal/report"
	"marketmapper/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createProjectRequest struct {
	Name string `json:"name"`
}

func (a *App) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, errors.ValidationError("body", "invalid JSON"))
		return
	}
	if req.Name == "" {
		a.writeError(w, errors.ValidationError("name", "must not be empty"))
		return
	}

	user, err := a.users.GetOrCreateDefaultUser(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	project := &models.Project{
		OwnerID: user.ID,
		Name:    req.Name,
		Status:  models.ProjectStatusActive,
	}
	if err := a.projects.CreateProject(r.Context(), project); err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, project)
}

func (a *App) handleGetProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "projectID")
	if err != nil {
		a.writeError(w, err)
		return
	}
	project, err := a.projects.GetProject(r.Context(), projectID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, project)
}

// readinessChecker is implemented by runners that can preflight an input
// without running.
type readinessChecker interface {
	Readiness(models.JSONBMap) (*agent.Readiness, error)
}

// handleAgentReadiness answers whether an input is worth a full run. It
// validates the payload against the agent's input contract and reports the
// recommended processing mode, never touching credits or sessions.
func (a *App) handleAgentReadiness(w http.ResponseWriter, r *http.Request) {
	agentType := chi.URLParam(r, "agentType")
	runner, ok := a.orchestrator.Runner(agentType)
	if !ok {
		a.writeError(w, errors.AgentNotFound(agentType))
		return
	}
	checker, ok := runner.(readinessChecker)
	if !ok {
		a.writeError(w, errors.NotFound("readiness check for agent type "+agentType))
		return
	}

	var input models.JSONBMap
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		a.writeError(w, errors.ValidationError("body", "invalid JSON"))
		return
	}

	readiness, err := checker.Readiness(input)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, readiness)
}

func (a *App) handleRunAgent(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "projectID")
	if err != nil {
		a.writeError(w, err)
		return
	}
	agentType := chi.URLParam(r, "agentType")

	var input models.JSONBMap
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		a.writeError(w, errors.ValidationError("body", "invalid JSON"))
		return
	}

	user, err := a.users.GetOrCreateDefaultUser(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}

	result, sessionID, err := a.orchestrator.RunAgent(r.Context(), user.ID, projectID, agentType, input)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"result":     result,
	})
}

func (a *App) handleGetResult(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "projectID")
	if err != nil {
		a.writeError(w, err)
		return
	}
	agentType := chi.URLParam(r, "agentType")

	var result *models.AnalysisResult
	if raw := r.URL.Query().Get("version"); raw != "" {
		version, convErr := strconv.Atoi(raw)
		if convErr != nil || version < 1 {
			a.writeError(w, errors.ValidationError("version", "must be a positive integer"))
			return
		}
		result, err = a.results.GetByVersion(r.Context(), projectID, agentType, version)
	} else {
		result, err = a.results.GetLatest(r.Context(), projectID, agentType)
	}
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, result)
}

func (a *App) handleListSessions(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseUUIDParam(r, "projectID")
	if err != nil {
		a.writeError(w, err)
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, convErr := strconv.Atoi(raw); convErr == nil && n > 0 {
			limit = n
		}
	}
	sessions, err := a.sessions.ListProjectSessions(r.Context(), projectID, limit)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

func (a *App) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseUUIDParam(r, "sessionID")
	if err != nil {
		a.writeError(w, err)
		return
	}
	session, err := a.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	entries, err := a.conversations.ListBySession(r.Context(), sessionID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"session":      session,
		"conversation": entries,
	})
}

func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	result, err := a.latestResult(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	html, err := report.HTML(result)
	if err != nil {
		a.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(html); err != nil {
		a.log.Error("[UI] report write failed: %v", err)
	}
}

func (a *App) handleExport(w http.ResponseWriter, r *http.Request) {
	result, err := a.latestResult(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	workbook, err := report.Excel(result)
	if err != nil {
		a.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="analysis-v%d.xlsx"`, result.Version))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(workbook); err != nil {
		a.log.Error("[UI] export write failed: %v", err)
	}
}

// latestResult resolves the newest result for the project over every
// registered agent type, preferring the highest version
func (a *App) latestResult(r *http.Request) (*models.AnalysisResult, error) {
	projectID, err := parseUUIDParam(r, "projectID")
	if err != nil {
		return nil, err
	}
	if agentType := r.URL.Query().Get("agent"); agentType != "" {
		return a.results.GetLatest(r.Context(), projectID, agentType)
	}
	var best *models.AnalysisResult
	for _, agentType := range a.orchestrator.AgentTypes() {
		result, getErr := a.results.GetLatest(r.Context(), projectID, agentType)
		if getErr != nil {
			continue
		}
		if best == nil || result.CreatedAt.After(best.CreatedAt) {
			best = result
		}
	}
	if best == nil {
		return nil, errors.NotFound("analysis result")
	}
	return best, nil
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.ValidationError(name, "must be a UUID")
	}
	return id, nil
}
