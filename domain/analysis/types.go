package analysis

import (
	"marketmapper/domain/research"
)

// Mode is a named variant of the agent's processing logic
type Mode string

const (
	ModeDiscovery    Mode = "discovery"
	ModeQuestions    Mode = "questions"
	ModeDeepAnalysis Mode = "deep_analysis"
	ModeStrategy     Mode = "strategy"
	ModeValidation   Mode = "validation"
)

// KnownModes lists every mode the market mapper accepts
var KnownModes = []Mode{ModeDiscovery, ModeQuestions, ModeDeepAnalysis, ModeStrategy, ModeValidation}

// IsKnownMode reports whether m names a supported processing mode
func IsKnownMode(m Mode) bool {
	for _, k := range KnownModes {
		if k == m {
			return true
		}
	}
	return false
}

// Input is the canonical agent input after schema validation
type Input struct {
	BusinessIdea   string            `json:"business_idea"`
	Industry       string            `json:"industry"`
	Geography      string            `json:"geography,omitempty"`
	Keywords       []string          `json:"keywords,omitempty"`
	ProcessingMode Mode              `json:"processing_mode,omitempty"`
	Answers        map[string]string `json:"answers,omitempty"`
}

// Subject projects the research query out of the input
func (in Input) Subject() research.Subject {
	return research.Subject{
		BusinessIdea: in.BusinessIdea,
		Industry:     in.Industry,
		Geography:    in.Geography,
		Keywords:     in.Keywords,
	}
}

// AnsweredKeys returns the keys whose answers are non-empty
func (in Input) AnsweredKeys() []string {
	keys := make([]string, 0, len(in.Answers))
	for k, v := range in.Answers {
		if v != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Question is one clarification the agent wants answered
type Question struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Output is the canonical structured report produced by a completed run
type Output struct {
	SchemaVersion   int                        `json:"schema_version"`
	Mode            Mode                       `json:"mode"`
	Summary         string                     `json:"summary"`
	Competitors     []research.Competitor      `json:"competitors"`
	Market          *research.MarketAssessment `json:"market,omitempty"`
	ConfidenceScore float64                    `json:"confidence_score"` // [0,1]
	Questions       []Question                 `json:"questions,omitempty"`
	Recommendations []string                   `json:"recommendations,omitempty"`
}
