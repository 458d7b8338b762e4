package agent

import (
	"marketmapper/internal/schema"
)

func ptr(v float64) *float64 { return &v }

var modeNames = []string{"discovery", "questions", "deep_analysis", "strategy", "validation"}

// inputContract is the declared shape for market mapper input payloads
var inputContract = schema.Contract{
	Name: "market_mapper_input",
	Fields: []schema.Field{
		{Name: "business_idea", Type: schema.TypeString, Required: true},
		{Name: "industry", Type: schema.TypeString, Required: true},
		{Name: "geography", Type: schema.TypeString},
		{Name: "keywords", Type: schema.TypeArray, Elem: schema.TypeString},
		{Name: "processing_mode", Type: schema.TypeString, Enum: modeNames},
		{Name: "answers", Type: schema.TypeStringMap},
	},
}

// outputContract is the declared shape for market mapper reports. Nothing
// that fails it is ever persisted.
var outputContract = schema.Contract{
	Name: "market_mapper_output",
	Fields: []schema.Field{
		{Name: "schema_version", Type: schema.TypeInteger, Required: true, Min: ptr(1)},
		{Name: "mode", Type: schema.TypeString, Required: true, Enum: modeNames},
		{Name: "summary", Type: schema.TypeString, Required: true},
		{Name: "confidence_score", Type: schema.TypeNumber, Required: true, Min: ptr(0), Max: ptr(1)},
		{Name: "competitors", Type: schema.TypeArray, Required: true, Items: &schema.Contract{
			Name: "competitor",
			Fields: []schema.Field{
				{Name: "name", Type: schema.TypeString, Required: true},
				{Name: "segment", Type: schema.TypeString, Enum: []string{"direct", "indirect", "substitute"}},
				{Name: "similarity", Type: schema.TypeNumber, Min: ptr(0), Max: ptr(1)},
			},
		}},
		{Name: "market", Type: schema.TypeObject, Fields: []schema.Field{
			{Name: "tam", Type: schema.TypeNumber, Min: ptr(0)},
			{Name: "sam", Type: schema.TypeNumber, Min: ptr(0)},
			{Name: "som", Type: schema.TypeNumber, Min: ptr(0)},
			{Name: "growth_rate", Type: schema.TypeNumber},
		}},
		{Name: "questions", Type: schema.TypeArray, Items: &schema.Contract{
			Name: "question",
			Fields: []schema.Field{
				{Name: "key", Type: schema.TypeString, Required: true},
				{Name: "text", Type: schema.TypeString, Required: true},
			},
		}},
		{Name: "recommendations", Type: schema.TypeArray, Elem: schema.TypeString},
	},
}

// inputAliases maps the field spellings callers are known to send
var inputAliases = schema.Aliases{
	"business_idea":   {"businessIdea", "idea", "business_description", "businessDescription"},
	"industry":        {"sector", "industryName"},
	"geography":       {"location", "region"},
	"keywords":        {"tags"},
	"processing_mode": {"processingMode", "mode"},
	"answers":         {"answeredQuestions", "answered_questions"},
}

// outputAliases maps the spellings models use for report fields. Applied once
// at the gate; nothing downstream does fallback lookups.
var outputAliases = schema.Aliases{
	"summary":          {"overview", "analysis_summary", "analysisSummary"},
	"confidence_score": {"confidenceScore", "confidence", "score"},
	"competitors":      {"competitor_list", "competitorList", "companies"},
	"market":           {"market_size", "marketSize", "market_assessment"},
	"questions":        {"clarifying_questions", "clarifyingQuestions", "next_questions"},
	"recommendations":  {"next_steps", "nextSteps", "suggestions"},
}
