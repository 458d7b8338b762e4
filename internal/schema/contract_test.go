package schema

import (
	"strings"
	"testing"

	"marketmapper/internal/errors"
)

func scoreRange() (*float64, *float64) {
	lo, hi := 0.0, 1.0
	return &lo, &hi
}

func testContract() Contract {
	lo, hi := scoreRange()
	return Contract{
		Name: "report",
		Fields: []Field{
			{Name: "summary", Type: TypeString, Required: true},
			{Name: "confidence_score", Type: TypeNumber, Required: true, Min: lo, Max: hi},
			{Name: "competitors", Type: TypeArray, Required: true, Items: &Contract{
				Name: "competitor",
				Fields: []Field{
					{Name: "name", Type: TypeString, Required: true},
					{Name: "segment", Type: TypeString, Enum: []string{"direct", "indirect", "substitute"}},
				},
			}},
			{Name: "answers", Type: TypeStringMap},
		},
	}
}

func TestValidate_Passes(t *testing.T) {
	payload := map[string]interface{}{
		"summary":          "looks viable",
		"confidence_score": 0.8,
		"competitors": []interface{}{
			map[string]interface{}{"name": "Rival", "segment": "direct"},
		},
		"answers": map[string]interface{}{"target_customer": "lefties"},
	}
	if err := testContract().Validate(payload); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}
}

func TestValidate_MissingRequiredCarriesFieldPath(t *testing.T) {
	payload := map[string]interface{}{
		"confidence_score": 0.8,
		"competitors":      []interface{}{},
	}
	err := testContract().Validate(payload)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if errors.GetCode(err) != errors.CodeValidationError {
		t.Errorf("expected VALIDATION_ERROR, got %s", errors.GetCode(err))
	}
	if !strings.Contains(err.Error(), "report.summary") {
		t.Errorf("error must name the failing field path, got %q", err.Error())
	}
}

func TestValidate_NestedItemPath(t *testing.T) {
	payload := map[string]interface{}{
		"summary":          "x",
		"confidence_score": 0.5,
		"competitors": []interface{}{
			map[string]interface{}{"name": "Rival", "segment": "frenemy"},
		},
	}
	err := testContract().Validate(payload)
	if err == nil {
		t.Fatal("expected validation failure for enum violation")
	}
	if !strings.Contains(err.Error(), "competitors[0].segment") {
		t.Errorf("error must carry the nested path, got %q", err.Error())
	}
}

func TestValidate_NumericBounds(t *testing.T) {
	payload := map[string]interface{}{
		"summary":          "x",
		"confidence_score": 1.7,
		"competitors":      []interface{}{},
	}
	err := testContract().Validate(payload)
	if err == nil || !strings.Contains(err.Error(), "confidence_score") {
		t.Fatalf("expected bound violation on confidence_score, got %v", err)
	}
}

func TestNormalize_AliasesMapOnce(t *testing.T) {
	aliases := Aliases{
		"business_idea":    {"businessIdea", "idea"},
		"confidence_score": {"confidenceScore", "confidence"},
	}
	payload := map[string]interface{}{
		"businessIdea": "scissors box",
		"confidence":   0.4,
		"extra":        true,
	}
	got := Normalize(payload, aliases)

	if got["business_idea"] != "scissors box" {
		t.Errorf("alias businessIdea not normalized: %v", got)
	}
	if got["confidence_score"] != 0.4 {
		t.Errorf("alias confidence not normalized: %v", got)
	}
	if _, leaked := got["businessIdea"]; leaked {
		t.Error("alias spelling must not survive normalization")
	}
	if got["extra"] != true {
		t.Error("unrecognized keys must pass through")
	}
}

func TestNormalize_CanonicalWinsOverAlias(t *testing.T) {
	aliases := Aliases{"confidence_score": {"confidence"}}
	payload := map[string]interface{}{
		"confidence_score": 0.9,
		"confidence":       0.1,
	}
	got := Normalize(payload, aliases)
	if got["confidence_score"] != 0.9 {
		t.Errorf("canonical key must win, got %v", got["confidence_score"])
	}
}
