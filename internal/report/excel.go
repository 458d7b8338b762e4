package report

import (
	"bytes"

	"marketmapper/domain/analysis"
	"marketmapper/internal/errors"
	"marketmapper/internal/schema"
	"marketmapper/models"

	"github.com/xuri/excelize/v2"
)

// Excel renders the competitor landscape of an analysis result as an xlsx
// workbook and returns the serialized bytes
func Excel(result *models.AnalysisResult) ([]byte, error) {
	if result == nil {
		return nil, errors.NotFound("analysis result")
	}
	var out analysis.Output
	if err := schema.Decode(result.Payload, &out); err != nil {
		return nil, errors.Wrap(err, "failed to decode result payload")
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Competitors"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create sheet")
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, errors.Wrap(err, "failed to drop default sheet")
	}

	headers := []string{"Name", "Segment", "Similarity", "Market Share", "Strengths"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, errors.Wrap(err, "failed to write header")
		}
	}

	for r, c := range out.Competitors {
		row := r + 2
		values := []interface{}{c.Name, string(c.Segment), c.Similarity, c.MarketShare, joinStrengths(c.Strengths)}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, errors.Wrap(err, "failed to write row")
			}
		}
	}

	// Summary block on a second sheet.
	summarySheet := "Summary"
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, errors.Wrap(err, "failed to create summary sheet")
	}
	summaryRows := [][]interface{}{
		{"Version", result.Version},
		{"Mode", string(out.Mode)},
		{"Confidence", out.ConfidenceScore},
		{"Summary", out.Summary},
	}
	for r, pair := range summaryRows {
		for col, v := range pair {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+1)
			if err := f.SetCellValue(summarySheet, cell, v); err != nil {
				return nil, errors.Wrap(err, "failed to write summary")
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, errors.Wrap(err, "failed to serialize workbook")
	}
	return buf.Bytes(), nil
}

func joinStrengths(strengths []string) string {
	out := ""
	for i, s := range strengths {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}
