// internal/types/timeline.go
package types

// Timerange is a start/duration pair in microseconds, the backend's unit.
type Timerange struct {
	Start    int64 `json:"start"`
	Duration int64 `json:"duration"`
}

// Segment is one timed placement of a material on a track. Speed and Volume
// are pointers so that "not set on the segment" is distinguishable from an
// explicit zero; Style carries backend-defined per-placement overrides.
type Segment struct {
	ID              string         `json:"id"`
	MaterialID      string         `json:"material_id"`
	TargetTimerange Timerange      `json:"target_timerange"`
	SourceTimerange *Timerange     `json:"source_timerange,omitempty"`
	Speed           *float64       `json:"speed,omitempty"`
	Volume          *float64       `json:"volume,omitempty"`
	Style           map[string]any `json:"style,omitempty"`
}

// Track is one timeline lane. Read-only input to the engine.
type Track struct {
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	Type        string    `json:"type"`
	RenderIndex int       `json:"render_index"`
	Segments    []Segment `json:"segments"`
}
