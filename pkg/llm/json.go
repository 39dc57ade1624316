package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hireloop/hireloop/pkg/errorsx"
)

// CleanJSON strips markdown code fences and surrounding prose so a model
// response can be parsed as a JSON object.
func CleanJSON(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return text
	}
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}

// ParseObject parses a model response into a JSON object and verifies the
// required keys are present. Missing keys and malformed JSON both surface as
// llm_parse errors rather than silent empty values.
func ParseObject(raw string, required ...string) (map[string]any, error) {
	cleaned := CleanJSON(raw)
	if cleaned == "" {
		return nil, errorsx.New("empty model response", errorsx.ReasonLLMParse)
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("invalid JSON from model: %w", err), errorsx.ReasonLLMParse)
	}
	var missing []string
	for _, key := range required {
		if _, ok := obj[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, errorsx.Wrap(
			fmt.Errorf("model response missing keys: %s", strings.Join(missing, ", ")),
			errorsx.ReasonLLMParse)
	}
	return obj, nil
}

// StringField extracts a field as a string, joining list values the way the
// model sometimes returns them.
func StringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, strings.TrimSpace(fmt.Sprint(item)))
		}
		return strings.Join(parts, " ")
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// StringList extracts a field as a list of strings, accepting a bare string
// as a one-element list.
func StringList(obj map[string]any, key string) []string {
	switch v := obj[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, strings.TrimSpace(fmt.Sprint(item)))
		}
		return out
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return []string{strings.TrimSpace(v)}
	default:
		return nil
	}
}

// NumberField extracts a numeric field, accepting numbers encoded as strings.
func NumberField(obj map[string]any, key string) (float64, error) {
	switch v := obj[key].(type) {
	case float64:
		return v, nil
	case json.Number:
		return v.Float64()
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(v), "%g", &f); err != nil {
			return 0, errorsx.Wrap(fmt.Errorf("field %q is not numeric: %q", key, v), errorsx.ReasonLLMParse)
		}
		return f, nil
	default:
		return 0, errorsx.Wrap(fmt.Errorf("field %q is not numeric", key), errorsx.ReasonLLMParse)
	}
}
