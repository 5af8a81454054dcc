package toolserver

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Arguments arrive decoded from JSON, but in-process callers may pass Go
// values directly, so the accessors accept both.

func stringArg(args map[string]any, key string, fallback string) string {
	switch v := args[key].(type) {
	case string:
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func numberArg(args map[string]any, key string) (float64, bool, error) {
	raw, present := args[key]
	if !present || raw == nil {
		return 0, false, nil
	}

	value, err := toFloat(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return value, true, nil
}

func floatArg(args map[string]any, key string, fallback float64) (float64, error) {
	value, ok, err := numberArg(args, key)
	if err != nil || !ok {
		return fallback, err
	}
	return value, nil
}

// intArg falls back when the key is missing and rejects values below floor.
func intArg(args map[string]any, key string, fallback int, floor int) (int, error) {
	value, ok, err := numberArg(args, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return fallback, nil
	}
	if value < float64(floor) {
		return 0, fmt.Errorf("%s must be at least %d", key, floor)
	}
	return int(value), nil
}

func floatsArg(args map[string]any, key string) ([]float64, error) {
	switch v := args[key].(type) {
	case nil:
		return nil, nil
	case []float64:
		return v, nil
	case []int:
		out := make([]float64, len(v))
		for i, n := range v {
			out[i] = float64(n)
		}
		return out, nil
	case []any:
		out := make([]float64, 0, len(v))
		for i, item := range v {
			n, err := toFloat(item)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
			}
			out = append(out, n)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be an array of numbers", key)
	}
}

func stringsArg(args map[string]any, key string) ([]string, error) {
	switch v := args[key].(type) {
	case nil:
		return nil, nil
	case []string:
		return cleanStrings(v), nil
	case string:
		return cleanStrings(strings.Split(v, ",")), nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", key, i)
			}
			out = append(out, s)
		}
		return cleanStrings(out), nil
	default:
		return nil, fmt.Errorf("%s must be an array of strings", key)
	}
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected %T, want a number", raw)
	}
}

func cleanStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
