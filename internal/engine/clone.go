// internal/engine/clone.go
package engine

// The engine guarantees it never mutates caller-owned catalog or track
// data, so everything that crosses into a request payload is structurally
// copied rather than aliased.

// CloneValue deep-copies maps and slices; scalars are returned as-is.
func CloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return CloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = CloneValue(item)
		}
		return out
	default:
		return v
	}
}

// CloneMap deep-copies a JSON-shaped map. Returns nil for a nil input.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = CloneValue(v)
	}
	return out
}
