package cip

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Response is a decoded JSON object returned by an operation.
type Response map[string]any

func toResponse(tree any) (Response, error) {
	switch v := tree.(type) {
	case nil:
		return Response{}, nil
	case map[string]any:
		return Response(v), nil
	default:
		return nil, fmt.Errorf("unexpected %T response", tree)
	}
}

// Items returns the "items" records of a search or field-values response.
func (r Response) Items() []map[string]any {
	list, ok := r["items"].([]any)
	if !ok {
		return nil
	}
	items := make([]map[string]any, 0, len(list))
	for _, raw := range list {
		if item, ok := raw.(map[string]any); ok {
			items = append(items, item)
		}
	}
	return items
}

// String returns key as a string. Numbers are formatted.
func (r Response) String(key string) string {
	return stringValue(r[key])
}

// Int returns key as an int64, or 0 when it is missing or not numeric.
func (r Response) Int(key string) int64 {
	return intValue(r[key])
}

// Object returns key as a nested Response.
func (r Response) Object(key string) Response {
	if m, ok := r[key].(map[string]any); ok {
		return Response(m)
	}
	return nil
}

// Strings returns key as a list of strings, skipping non-string entries.
func (r Response) Strings(key string) []string {
	list, ok := r[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, raw := range list {
		if s, ok := raw.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// TotalCount returns "totalcount" of a search response.
func (r Response) TotalCount() int64 {
	return r.Int("totalcount")
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case time.Time:
		return val.Format(time.RFC3339)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

func intValue(v any) int64 {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		if f, err := val.Float64(); err == nil {
			return int64(f)
		}
	case float64:
		return int64(val)
	case int:
		return int64(val)
	case int64:
		return val
	case string:
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
