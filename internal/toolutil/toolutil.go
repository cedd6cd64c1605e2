// Package toolutil provides shared helpers for jobmatch tools: argument
// coercion for loosely-typed model tool calls and JSON round-tripping
// between tool payloads and typed structs.
package toolutil

import "encoding/json"

// Str reads a string argument, "" when absent or mistyped.
func Str(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// Decode converts a loose argument map into a typed struct via JSON.
func Decode[T any](args map[string]any) (T, error) {
	var out T
	data, err := json.Marshal(args)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, err
	}
	return out, nil
}

// Encode converts a typed value into the loose map shape tool responses use.
func Encode(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
