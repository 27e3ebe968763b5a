package score

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON pulls the first JSON object out of a completion that may wrap
// it in prose or a markdown code fence.
func extractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)

	if idx := strings.Index(text, "```json"); idx >= 0 {
		text = text[idx+len("```json"):]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	} else if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+3:]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object found in response")
	}

	return text[start : end+1], nil
}

// decodeStrict extracts the embedded JSON object and decodes it into v.
func decodeStrict(text string, v interface{}) error {
	raw, err := extractJSON(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("failed to decode model JSON: %w", err)
	}
	return nil
}
