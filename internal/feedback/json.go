package feedback

import (
	"encoding/json"
	"strings"
)

// ExtractJSON pulls the outermost JSON object out of free-form model
// output: markdown code fences are stripped and everything outside the
// first '{' and last '}' is discarded. Returns "" when no object exists.
func ExtractJSON(text string) string {
	t := strings.TrimSpace(text)
	if t == "" {
		return ""
	}

	if strings.HasPrefix(t, "```") {
		lines := strings.Split(t, "\n")
		if len(lines) > 2 {
			t = strings.Join(lines[1:len(lines)-1], "\n")
		}
	}
	t = strings.ReplaceAll(t, "```json", "")
	t = strings.ReplaceAll(t, "```", "")
	t = strings.TrimSpace(t)

	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return t[start : end+1]
}

// DecodeJSON extracts and parses a JSON object from model output.
// Returns (nil, false) when the text holds no parseable object.
func DecodeJSON(text string) (map[string]any, bool) {
	j := ExtractJSON(text)
	if j == "" {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(j), &m); err != nil {
		return nil, false
	}
	return m, true
}
