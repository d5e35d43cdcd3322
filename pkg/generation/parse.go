package generation

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	errNotJSON   = errors.New("model output is not valid JSON")
	errBadSchema = errors.New("model JSON does not match minimal schema")
)

// ParseModelJSON extracts a JSON object from raw model output. Strict
// parsing is tried first; on failure, the substring between the first "{"
// and the last "}" is retried once, which recovers objects wrapped in
// prose or markdown fences. Anything else is rejected.
func ParseModelJSON(raw string) (map[string]any, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, errNotJSON
	}

	if obj, ok := tryParseObject(s); ok {
		return obj, nil
	}

	a := strings.Index(s, "{")
	b := strings.LastIndex(s, "}")
	if a != -1 && b > a {
		if obj, ok := tryParseObject(s[a : b+1]); ok {
			return obj, nil
		}
	}
	return nil, errNotJSON
}

func tryParseObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// ValidateMinSchema checks that every expected key is present with a
// workable type. Normalization tolerates sloppy values inside those types;
// a missing key or a wholly wrong type means the model ignored the output
// contract and the attempt should be retried.
func ValidateMinSchema(obj map[string]any) error {
	checks := map[string]func(any) bool{
		"urgency_level":      isString,
		"category":           isString,
		"is_urgent":          isNumberOrBool,
		"sla_target_minutes": isNumberOrString,
		"assigned_to":        isString,
		"response_draft":     isString,
		"required_info":      isListOrString,
		"decision_source":    isString,
		"status":             isString,
	}
	for key, ok := range checks {
		v, present := obj[key]
		if !present || !ok(v) {
			return errBadSchema
		}
	}
	return nil
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func isNumberOrBool(v any) bool {
	switch v.(type) {
	case float64, bool:
		return true
	}
	return false
}

func isNumberOrString(v any) bool {
	switch v.(type) {
	case float64, string:
		return true
	}
	return false
}

func isListOrString(v any) bool {
	switch v.(type) {
	case []any, string:
		return true
	}
	return false
}
