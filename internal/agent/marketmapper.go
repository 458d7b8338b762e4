package agent

import (
	"context"
	"fmt"

	"marketmapper/ai"
	"marketmapper/domain/analysis"
	researchdomain "marketmapper/domain/research"
	"marketmapper/internal"
	"marketmapper/internal/errors"
	"marketmapper/internal/research"
	"marketmapper/internal/schema"
	"marketmapper/internal/usage"
	"marketmapper/models"
	"marketmapper/ports"

	"github.com/google/uuid"
)

// TypeMarketMapper is the registered agent type name
const TypeMarketMapper = "market_mapper"

// MarketMapper maps a business idea against its competitive landscape.
// It fans out to the research collaborators, assembles a mode-specific
// prompt, and turns the model's answer into a validated structured report.
type MarketMapper struct {
	sessions      ports.SessionRepository
	conversations ports.ConversationRepository
	research      *research.Service
	gateway       *ai.Gateway
	usage         *usage.Service
	log           *internal.Logger
}

// NewMarketMapper wires the market mapper agent
func NewMarketMapper(
	sessions ports.SessionRepository,
	conversations ports.ConversationRepository,
	researchSvc *research.Service,
	gateway *ai.Gateway,
	usageSvc *usage.Service,
	logger *internal.Logger,
) *MarketMapper {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &MarketMapper{
		sessions:      sessions,
		conversations: conversations,
		research:      researchSvc,
		gateway:       gateway,
		usage:         usageSvc,
		log:           logger,
	}
}

// Type implements Runner
func (m *MarketMapper) Type() string { return TypeMarketMapper }

// InputContract implements Runner
func (m *MarketMapper) InputContract() schema.Contract { return inputContract }

// OutputContract implements Runner
func (m *MarketMapper) OutputContract() schema.Contract { return outputContract }

// RecommendedMode returns the processing mode the answer volume suggests.
// Pure function over the input shape.
func (m *MarketMapper) RecommendedMode(in analysis.Input) analysis.Mode {
	return ai.InferMode(in.Answers)
}

// HasEnoughInformation reports whether the input carries enough answered
// questions for its processing mode, so callers can ask for clarification
// before spending a full analysis run. Pure function over the input shape.
func (m *MarketMapper) HasEnoughInformation(in analysis.Input) bool {
	mode := in.ProcessingMode
	if mode == "" {
		mode = ai.InferMode(in.Answers)
	}
	answered := len(in.AnsweredKeys())
	switch mode {
	case analysis.ModeDeepAnalysis, analysis.ModeValidation:
		return answered >= 3
	case analysis.ModeStrategy:
		return answered >= 6
	default:
		// discovery and questions exist to gather information
		return true
	}
}

// Readiness is the preflight verdict for a prospective run.
type Readiness struct {
	Ready           bool          `json:"ready"`
	Mode            analysis.Mode `json:"mode"`
	RecommendedMode analysis.Mode `json:"recommended_mode"`
	AnsweredCount   int           `json:"answered_count"`
}

// Readiness validates a prospective input and reports whether it carries
// enough answered questions for its processing mode, without creating a
// session, calling collaborators or spending a credit.
func (m *MarketMapper) Readiness(raw models.JSONBMap) (*Readiness, error) {
	payload := schema.Normalize(raw, inputAliases)
	if err := inputContract.Validate(payload); err != nil {
		return nil, err
	}
	var in analysis.Input
	if err := schema.Decode(payload, &in); err != nil {
		return nil, errors.WithCode(errors.CodeValidationError, err)
	}
	mode := in.ProcessingMode
	if mode == "" {
		mode = m.RecommendedMode(in)
	}
	return &Readiness{
		Ready:           m.HasEnoughInformation(in),
		Mode:            mode,
		RecommendedMode: m.RecommendedMode(in),
		AnsweredCount:   len(in.AnsweredKeys()),
	}, nil
}

// Run implements Runner. See the Runner contract for lifecycle guarantees.
func (m *MarketMapper) Run(ctx context.Context, projectID uuid.UUID, rawInput models.JSONBMap) (uuid.UUID, models.JSONBMap, error) {
	// Validate input before any session or collaborator cost.
	payload := schema.Normalize(rawInput, inputAliases)
	if err := inputContract.Validate(payload); err != nil {
		return uuid.Nil, nil, err
	}
	var in analysis.Input
	if err := schema.Decode(payload, &in); err != nil {
		return uuid.Nil, nil, errors.WithCode(errors.CodeValidationError, err)
	}
	mode := in.ProcessingMode
	if mode == "" {
		mode = ai.InferMode(in.Answers)
	}

	session, err := m.sessions.CreateSession(ctx, projectID, TypeMarketMapper, payload)
	if err != nil {
		return uuid.Nil, nil, errors.Wrap(err, "failed to create session")
	}
	if _, err := m.conversations.Append(ctx, session.ID, models.RoleSystem,
		fmt.Sprintf("started %s run in %s mode", TypeMarketMapper, mode)); err != nil {
		return session.ID, nil, m.fail(ctx, session.ID, errors.Wrap(err, "failed to write audit entry"))
	}

	m.log.Info("[MarketMapper] session %s running, mode=%s idea=%q", session.ID, mode, in.BusinessIdea)

	output, err := m.process(ctx, session.ID, mode, in)
	if err != nil {
		return session.ID, nil, m.fail(ctx, session.ID, err)
	}

	outPayload, err := schema.Encode(output)
	if err != nil {
		return session.ID, nil, m.fail(ctx, session.ID, err)
	}
	if err := outputContract.Validate(outPayload); err != nil {
		return session.ID, nil, m.fail(ctx, session.ID, err)
	}

	if err := m.sessions.CompleteSession(ctx, session.ID, outPayload); err != nil {
		return session.ID, nil, m.fail(ctx, session.ID, errors.Wrap(err, "failed to complete session"))
	}
	if _, err := m.conversations.Append(ctx, session.ID, models.RoleAssistant,
		fmt.Sprintf("completed %s run: %s", TypeMarketMapper, output.Summary)); err != nil {
		m.log.Warn("[MarketMapper] completion audit entry failed for session %s: %v", session.ID, err)
	}

	return session.ID, outPayload, nil
}

// process runs collaborators, prompt and gateway for one mode and returns the
// canonical output. The LLM step is retried at most once, and only when the
// first response was not structurally extractable.
func (m *MarketMapper) process(ctx context.Context, sessionID uuid.UUID, mode analysis.Mode, in analysis.Input) (*analysis.Output, error) {
	bundle := m.research.FanOut(ctx, in.Subject())

	req := ai.BuildPrompt(mode, in, bundle)
	raw, usageData, err := m.gateway.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	m.usage.Record(ctx, &sessionID, string(mode), usageData)

	modelPayload, err := ai.ExtractMap(raw)
	if errors.HasCode(err, errors.CodeParseError) {
		m.log.Warn("[MarketMapper] unparseable response, retrying once with strict directive")
		retry := req
		retry.Messages = append(append([]ports.ChatMessage{}, req.Messages...), ports.ChatMessage{
			Role:    "user",
			Content: "The previous response was not valid JSON. Respond again with only a single valid JSON object, no prose, no code fences.",
		})
		raw, usageData, err = m.gateway.Complete(ctx, retry)
		if err != nil {
			return nil, err
		}
		m.usage.Record(ctx, &sessionID, string(mode)+"_retry", usageData)
		modelPayload, err = ai.ExtractMap(raw)
	}
	if err != nil {
		return nil, err
	}

	normalized := schema.Normalize(modelPayload, outputAliases)
	var out analysis.Output
	if err := schema.Decode(normalized, &out); err != nil {
		return nil, errors.WithCode(errors.CodeParseError, err)
	}

	finalize(&out, mode, in, bundle)
	return &out, nil
}

// finalize applies the deterministic parts of the report the model cannot be
// trusted with: schema tagging, collaborator-derived defaults, confidence
// clamping and progressive disclosure on questions.
func finalize(out *analysis.Output, mode analysis.Mode, in analysis.Input, bundle researchdomain.Bundle) {
	out.SchemaVersion = researchdomain.SchemaVersion
	out.Mode = mode

	if out.Competitors == nil {
		out.Competitors = bundle.Competitors.Value.Competitors
	}
	if out.Competitors == nil {
		out.Competitors = []researchdomain.Competitor{}
	}
	if out.ConfidenceScore <= 0 {
		out.ConfidenceScore = research.BundleConfidence(bundle)
	}
	if out.ConfidenceScore > 1 {
		out.ConfidenceScore = 1
	}
	if out.Market == nil && mode == analysis.ModeDeepAnalysis {
		market := bundle.Market.Value
		out.Market = &market
	}
	out.Questions = ai.FilterAnsweredQuestions(out.Questions, in.Answers)
}

// fail marks the session failed, appends the failure audit entry and returns
// the original error. Refunds are the orchestrator's concern.
func (m *MarketMapper) fail(ctx context.Context, sessionID uuid.UUID, cause error) error {
	if err := m.sessions.FailSession(ctx, sessionID); err != nil {
		m.log.Error("[MarketMapper] could not mark session %s failed: %v", sessionID, err)
	}
	if _, err := m.conversations.Append(ctx, sessionID, models.RoleSystem,
		fmt.Sprintf("failed: %s", cause.Error())); err != nil {
		m.log.Error("[MarketMapper] could not append failure entry for session %s: %v", sessionID, err)
	}
	return cause
}
