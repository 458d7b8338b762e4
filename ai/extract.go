package ai

import (
	"encoding/json"
	"strings"

	"marketmapper/internal/errors"
)

// ExtractJSON parses the first well-formed JSON value out of raw LLM output.
// Responses wrapped in code fences or prose are tolerated. When nothing
// parses, the returned PARSE_ERROR retains the raw text for diagnosis.
func ExtractJSON[T any](raw string) (*T, error) {
	content := CleanJSON(raw)

	start := firstJSONStart(content)
	if start < 0 {
		return nil, errors.ParseError("no JSON value found in response", raw)
	}

	var result T
	dec := json.NewDecoder(strings.NewReader(content[start:]))
	if err := dec.Decode(&result); err != nil {
		return nil, errors.ParseError("failed to parse JSON value: "+err.Error(), raw)
	}
	return &result, nil
}

// ExtractMap extracts the first JSON object as a generic payload map
func ExtractMap(raw string) (map[string]interface{}, error) {
	out, err := ExtractJSON[map[string]interface{}](raw)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// CleanJSON strips markdown code fences and leading prose around a JSON body
func CleanJSON(content string) string {
	content = strings.TrimSpace(content)

	// Remove markdown code blocks with various prefixes
	if strings.HasPrefix(content, "```json") && strings.HasSuffix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	} else if strings.HasPrefix(content, "```") && strings.HasSuffix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	} else if idx := strings.Index(content, "```json"); idx >= 0 {
		// Fenced block embedded in prose: keep what's inside the fence.
		rest := content[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			content = strings.TrimSpace(rest[:end])
		}
	}

	// Drop common chatter lines that precede the JSON body
	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		if trimmed == "" ||
			strings.HasPrefix(lower, "here is") ||
			strings.HasPrefix(lower, "here's") ||
			strings.HasPrefix(lower, "the json") ||
			strings.HasPrefix(lower, "output:") ||
			strings.HasPrefix(lower, "response:") ||
			strings.HasPrefix(trimmed, "##") {
			continue
		}
		cleaned = append(cleaned, line)
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

func firstJSONStart(content string) int {
	obj := strings.IndexByte(content, '{')
	arr := strings.IndexByte(content, '[')
	switch {
	case obj < 0:
		return arr
	case arr < 0:
		return obj
	case arr < obj:
		return arr
	default:
		return obj
	}
}
