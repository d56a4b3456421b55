// internal/types/material.go
package types

// Material is one catalog entry describing a piece of project content.
// The backend attaches arbitrary fields per material kind, so the record is
// kept schema-less with typed accessors for the fields this engine reads.
type Material map[string]any

func (m Material) ID() string   { return m.str("id") }
func (m Material) Type() string { return m.str("type") }
func (m Material) Path() string { return m.str("path") }

func (m Material) Width() int  { return m.num("width") }
func (m Material) Height() int { return m.num("height") }

// DurationSeconds returns the material duration, or 0 when absent.
func (m Material) DurationSeconds() float64 {
	if v, ok := m["duration_seconds"].(float64); ok {
		return v
	}
	return 0
}

func (m Material) str(key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func (m Material) num(key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// Catalog indexes a project's materials by id. The engine only ever reads
// and clones entries, never mutates them.
type Catalog map[string]Material

// Lookup returns the material for id, or false when the id is unknown.
func (c Catalog) Lookup(id string) (Material, bool) {
	m, ok := c[id]
	return m, ok
}
