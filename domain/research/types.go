package research

import (
	"marketmapper/domain/core"
)

// SchemaVersion tags every collaborator result shape so downstream consumers
// can detect drift without inspecting fields.
const SchemaVersion = 1

// Subject is the semantic query shared by all research providers
type Subject struct {
	BusinessIdea string   `json:"business_idea"`
	Industry     string   `json:"industry"`
	Geography    string   `json:"geography,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
}

// QueryHash returns the stable cache key component for this subject
func (s Subject) QueryHash() core.QueryHash {
	return core.NewQueryHash([]string{s.BusinessIdea, s.Industry, s.Geography}, s.Keywords)
}

// CompetitorSegment classifies how directly a competitor overlaps the subject
type CompetitorSegment string

const (
	SegmentDirect     CompetitorSegment = "direct"
	SegmentIndirect   CompetitorSegment = "indirect"
	SegmentSubstitute CompetitorSegment = "substitute"
)

// CompetitorRecord is a raw candidate as fetched from a data source,
// before scoring and classification.
type CompetitorRecord struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Industry    string   `json:"industry"`
	Keywords    []string `json:"keywords"`
	MarketShare float64  `json:"market_share"` // fraction of tracked market, [0,1]
	FundingUSD  float64  `json:"funding_usd"`
}

// Competitor is a scored, classified competitor entry
type Competitor struct {
	Name        string            `json:"name"`
	Segment     CompetitorSegment `json:"segment"`
	Similarity  float64           `json:"similarity"` // [0,1]
	MarketShare float64           `json:"market_share"`
	Strengths   []string          `json:"strengths,omitempty"`
}

// CompetitorLandscape is the competitor discovery collaborator result
type CompetitorLandscape struct {
	SchemaVersion  int          `json:"schema_version"`
	Competitors    []Competitor `json:"competitors"`
	Concentration  float64      `json:"concentration"`    // Herfindahl index over shares, [0,1]
	BarrierToEntry string       `json:"barrier_to_entry"` // low | medium | high
	Summary        string       `json:"summary"`
}

// TrendDirection indicates where a market signal is heading
type TrendDirection string

const (
	TrendRising    TrendDirection = "rising"
	TrendFlat      TrendDirection = "flat"
	TrendDeclining TrendDirection = "declining"
)

// Trend is one observed market movement
type Trend struct {
	Name      string         `json:"name"`
	Direction TrendDirection `json:"direction"`
	Strength  float64        `json:"strength"` // [0,1]
}

// MarketAssessment is the market sizing collaborator result.
// Sizes are in USD millions.
type MarketAssessment struct {
	SchemaVersion int     `json:"schema_version"`
	TAM           float64 `json:"tam"`
	SAM           float64 `json:"sam"`
	SOM           float64 `json:"som"`
	GrowthRate    float64 `json:"growth_rate"` // annual fraction
	Trends        []Trend `json:"trends"`
}

// Theme is a recurring topic in sentiment data
type Theme struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"` // [-1,1]
	Mentions int     `json:"mentions"`
}

// SentimentSnapshot is the sentiment analysis collaborator result
type SentimentSnapshot struct {
	SchemaVersion int     `json:"schema_version"`
	Score         float64 `json:"score"` // [-1,1]
	SampleSize    int     `json:"sample_size"`
	Themes        []Theme `json:"themes"`
}

// ChannelSignal is activity on one web or social channel
type ChannelSignal struct {
	Channel    string  `json:"channel"`
	Volume     int     `json:"volume"`
	Engagement float64 `json:"engagement"` // [0,1]
}

// WebIntelligence is the web/social intelligence collaborator result
type WebIntelligence struct {
	SchemaVersion int             `json:"schema_version"`
	Mentions      int             `json:"mentions"`
	Channels      []ChannelSignal `json:"channels"`
	TopQueries    []string        `json:"top_queries"`
}

// Sourced pairs a collaborator result with the provider's confidence in it.
// Confidence 0 with a default value means the provider soft-failed.
type Sourced[T any] struct {
	Value      T       `json:"value"`
	Confidence float64 `json:"confidence"` // [0,1]
	FromCache  bool    `json:"from_cache"`
}

// Bundle carries every collaborator output for one fan-out round
type Bundle struct {
	Competitors Sourced[CompetitorLandscape] `json:"competitors"`
	Market      Sourced[MarketAssessment]    `json:"market"`
	Sentiment   Sourced[SentimentSnapshot]   `json:"sentiment"`
	WebIntel    Sourced[WebIntelligence]     `json:"web_intel"`
}

// EmptyLandscape returns the documented soft-fail default for competitor discovery
func EmptyLandscape() CompetitorLandscape {
	return CompetitorLandscape{
		SchemaVersion:  SchemaVersion,
		Competitors:    []Competitor{},
		Concentration:  0,
		BarrierToEntry: "unknown",
		Summary:        "no competitor data available",
	}
}

// EmptyMarket returns the documented soft-fail default for market sizing
func EmptyMarket() MarketAssessment {
	return MarketAssessment{SchemaVersion: SchemaVersion, Trends: []Trend{}}
}

// EmptySentiment returns the documented soft-fail default for sentiment analysis
func EmptySentiment() SentimentSnapshot {
	return SentimentSnapshot{SchemaVersion: SchemaVersion, Themes: []Theme{}}
}

// EmptyWebIntel returns the documented soft-fail default for web intelligence
func EmptyWebIntel() WebIntelligence {
	return WebIntelligence{SchemaVersion: SchemaVersion, Channels: []ChannelSignal{}, TopQueries: []string{}}
}
