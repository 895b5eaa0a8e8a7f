package llm

import (
	"encoding/json"
	"strings"
)

// ExtractJSON parses the object between the first '{' and the last '}' of text. It returns
// nil on any failure.
func ExtractJSON(text string) map[string]any {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil
	}
	return out
}

// StripCodeFences removes a surrounding ``` block (with or without a language tag).
// Text without a leading fence is returned trimmed.
func StripCodeFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return strings.TrimSpace(strings.Trim(s, "`"))
	}
	body := lines[1:]
	if strings.TrimSpace(body[len(body)-1]) == "```" {
		body = body[:len(body)-1]
	}
	return strings.TrimSpace(strings.Join(body, "\n"))
}
