package ai

import (
	"fmt"
	"sort"
	"strings"

	"marketmapper/domain/analysis"
	"marketmapper/domain/research"
	"marketmapper/ports"
)

// Request is a provider-ready completion request
type Request struct {
	System    string
	Messages  []ports.ChatMessage
	MaxTokens int
}

// InferMode picks a processing mode from the volume of existing answers.
// Pure: same answers, same mode.
func InferMode(answers map[string]string) analysis.Mode {
	answered := 0
	for _, v := range answers {
		if v != "" {
			answered++
		}
	}
	switch {
	case answered == 0:
		return analysis.ModeDiscovery
	case answered <= 2:
		return analysis.ModeQuestions
	case answered <= 5:
		return analysis.ModeDeepAnalysis
	default:
		return analysis.ModeStrategy
	}
}

// BuildPrompt assembles the provider request for a mode. Pure function:
// no I/O, no clock, deterministic over its arguments.
func BuildPrompt(mode analysis.Mode, input analysis.Input, bundle research.Bundle) Request {
	var user string
	switch mode {
	case analysis.ModeQuestions:
		user = fmt.Sprintf(questionsTemplate, input.BusinessIdea, input.Industry, answeredKeyList(input))
	case analysis.ModeDeepAnalysis:
		user = fmt.Sprintf(deepAnalysisTemplate, input.BusinessIdea, input.Industry, answerBlock(input))
	case analysis.ModeStrategy:
		user = fmt.Sprintf(strategyTemplate, input.BusinessIdea, input.Industry, answerBlock(input))
	case analysis.ModeValidation:
		user = fmt.Sprintf(validationTemplate, input.BusinessIdea, input.Industry, answerBlock(input))
	default:
		user = fmt.Sprintf(discoveryTemplate, input.BusinessIdea, input.Industry)
	}

	if ctx := researchContext(mode, bundle); ctx != "" {
		user += "\n\nRESEARCH CONTEXT:\n" + ctx
	}

	return Request{
		System:   systemContext,
		Messages: []ports.ChatMessage{{Role: "user", Content: user}},
	}
}

// researchContext selects the collaborator data each mode feeds the model
func researchContext(mode analysis.Mode, bundle research.Bundle) string {
	var sections []string

	includeCompetitors := true
	includeMarket := mode != analysis.ModeQuestions
	includeSentiment := mode == analysis.ModeDeepAnalysis || mode == analysis.ModeStrategy || mode == analysis.ModeValidation
	includeWeb := mode == analysis.ModeDeepAnalysis || mode == analysis.ModeValidation

	if includeCompetitors {
		sections = append(sections, competitorSection(bundle.Competitors))
	}
	if includeMarket {
		sections = append(sections, marketSection(bundle.Market))
	}
	if includeSentiment {
		sections = append(sections, sentimentSection(bundle.Sentiment))
	}
	if includeWeb {
		sections = append(sections, webSection(bundle.WebIntel))
	}

	var nonEmpty []string
	for _, s := range sections {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return strings.Join(nonEmpty, "\n")
}

func competitorSection(src research.Sourced[research.CompetitorLandscape]) string {
	l := src.Value
	if len(l.Competitors) == 0 {
		return fmt.Sprintf("COMPETITORS (confidence %.2f): none identified", src.Confidence)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "COMPETITORS (confidence %.2f, concentration %.2f, barrier %s):\n",
		src.Confidence, l.Concentration, l.BarrierToEntry)
	for _, c := range l.Competitors {
		fmt.Fprintf(&b, "- %s [%s] similarity %.2f share %.2f\n", c.Name, c.Segment, c.Similarity, c.MarketShare)
	}
	return strings.TrimRight(b.String(), "\n")
}

func marketSection(src research.Sourced[research.MarketAssessment]) string {
	m := src.Value
	if m.TAM == 0 && len(m.Trends) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "MARKET (confidence %.2f): TAM $%.0fM SAM $%.0fM SOM $%.0fM growth %.1f%%\n",
		src.Confidence, m.TAM, m.SAM, m.SOM, m.GrowthRate*100)
	for _, tr := range m.Trends {
		fmt.Fprintf(&b, "- trend %q %s (strength %.2f)\n", tr.Name, tr.Direction, tr.Strength)
	}
	return strings.TrimRight(b.String(), "\n")
}

func sentimentSection(src research.Sourced[research.SentimentSnapshot]) string {
	s := src.Value
	if s.SampleSize == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "SENTIMENT (confidence %.2f): overall %.2f across %d observations\n",
		src.Confidence, s.Score, s.SampleSize)
	for _, th := range s.Themes {
		fmt.Fprintf(&b, "- %s %.2f (%d mentions)\n", th.Name, th.Score, th.Mentions)
	}
	return strings.TrimRight(b.String(), "\n")
}

func webSection(src research.Sourced[research.WebIntelligence]) string {
	w := src.Value
	if w.Mentions == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "WEB SIGNALS (confidence %.2f): %d mentions\n", src.Confidence, w.Mentions)
	for _, ch := range w.Channels {
		fmt.Fprintf(&b, "- %s volume %d engagement %.2f\n", ch.Channel, ch.Volume, ch.Engagement)
	}
	return strings.TrimRight(b.String(), "\n")
}

func answeredKeyList(input analysis.Input) string {
	keys := input.AnsweredKeys()
	if len(keys) == 0 {
		return "(none)"
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}

func answerBlock(input analysis.Input) string {
	keys := input.AnsweredKeys()
	if len(keys) == 0 {
		return "(none)"
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", k, input.Answers[k])
	}
	return strings.TrimRight(b.String(), "\n")
}

// FilterAnsweredQuestions drops any question whose key already has a
// non-empty answer. Progressive disclosure: the model is told not to re-ask,
// and this enforces it even when the model ignores the instruction.
func FilterAnsweredQuestions(questions []analysis.Question, answers map[string]string) []analysis.Question {
	out := make([]analysis.Question, 0, len(questions))
	for _, q := range questions {
		if v, answered := answers[q.Key]; answered && v != "" {
			continue
		}
		out = append(out, q)
	}
	return out
}
