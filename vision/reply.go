package vision

import (
	"encoding/json"
	"strings"
)

const (
	keyUsableArea = "usable_area_m2"
	keyPanels     = "recommended_panels"
)

// extractJSON returns the span from the first "{" to the last "}" so that
// prose or markdown fences around the object are ignored.
func extractJSON(content string) (string, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return content[start : end+1], true
}

// ParseReply turns a model's free-form reply into a Result.
func ParseReply(reply string) *Result {
	content := strings.TrimSpace(reply)

	candidate, ok := extractJSON(content)
	if !ok {
		res := failure(KindNoJSONFound, "No JSON found in response")
		res.RawContent = content
		return res
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		res := failure(KindMalformedJSON, "Response content is not valid JSON")
		res.Details = err.Error()
		res.RawContent = content
		return res
	}

	area, hasArea := fields[keyUsableArea]
	panels, hasPanels := fields[keyPanels]
	if !hasArea || !hasPanels {
		res := failure(KindMissingRequiredKeys, "Missing required keys in response")
		res.RawContent = content
		return res
	}

	return &Result{
		UsableAreaM2:      area,
		RecommendedPanels: panels,
	}
}
