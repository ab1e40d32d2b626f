package vision

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON pulls a JSON object out of a model's free-text reply. Backends
// without a structured-output mode tend to wrap the object in a fenced code
// block; the first ```json fence wins, otherwise the whole body is tried.
func ExtractJSON(text string) (json.RawMessage, error) {
	candidate := strings.TrimSpace(text)

	if idx := strings.Index(candidate, "```json"); idx >= 0 {
		rest := candidate[idx+len("```json"):]
		// Models cut off mid-reply sometimes leave the fence open; the
		// remainder is still worth trying
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		candidate = strings.TrimSpace(rest)
	}

	var probe any
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLLMResponseParse, err)
	}
	if _, ok := probe.(map[string]any); !ok {
		return nil, fmt.Errorf("%w: response is not a JSON object", ErrLLMResponseParse)
	}

	return json.RawMessage(candidate), nil
}
