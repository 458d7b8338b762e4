package report

import (
	"fmt"
	"strings"

	"marketmapper/domain/analysis"
	"marketmapper/internal/errors"
	"marketmapper/internal/schema"
	"marketmapper/models"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown renders an analysis result as a markdown document
func Markdown(result *models.AnalysisResult) (string, error) {
	if result == nil {
		return "", errors.NotFound("analysis result")
	}
	var out analysis.Output
	if err := schema.Decode(result.Payload, &out); err != nil {
		return "", errors.Wrap(err, "failed to decode result payload")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Market Analysis (v%d)\n\n", result.Version)
	fmt.Fprintf(&b, "**Mode:** %s  \n", out.Mode)
	fmt.Fprintf(&b, "**Confidence:** %.0f%%\n\n", out.ConfidenceScore*100)

	b.WriteString("## Summary\n\n")
	b.WriteString(out.Summary)
	b.WriteString("\n\n")

	if len(out.Competitors) > 0 {
		b.WriteString("## Competitive Landscape\n\n")
		b.WriteString("| Competitor | Segment | Similarity | Market Share |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, c := range out.Competitors {
			fmt.Fprintf(&b, "| %s | %s | %.2f | %.1f%% |\n",
				c.Name, c.Segment, c.Similarity, c.MarketShare*100)
		}
		b.WriteString("\n")
	}

	if out.Market != nil {
		b.WriteString("## Market Sizing\n\n")
		fmt.Fprintf(&b, "- TAM: $%.0fM\n", out.Market.TAM)
		fmt.Fprintf(&b, "- SAM: $%.0fM\n", out.Market.SAM)
		fmt.Fprintf(&b, "- SOM: $%.0fM\n", out.Market.SOM)
		fmt.Fprintf(&b, "- Growth rate: %.1f%%\n\n", out.Market.GrowthRate*100)
		if len(out.Market.Trends) > 0 {
			b.WriteString("### Trends\n\n")
			for _, t := range out.Market.Trends {
				fmt.Fprintf(&b, "- %s (%s, strength %.2f)\n", t.Name, t.Direction, t.Strength)
			}
			b.WriteString("\n")
		}
	}

	if len(out.Questions) > 0 {
		b.WriteString("## Open Questions\n\n")
		for _, q := range out.Questions {
			fmt.Fprintf(&b, "- %s\n", q.Text)
		}
		b.WriteString("\n")
	}

	if len(out.Recommendations) > 0 {
		b.WriteString("## Recommendations\n\n")
		for i, r := range out.Recommendations {
			fmt.Fprintf(&b, "%d. %s\n", i+1, r)
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}

// HTML renders an analysis result as an HTML document
func HTML(result *models.AnalysisResult) ([]byte, error) {
	md, err := Markdown(result)
	if err != nil {
		return nil, err
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer), nil
}
