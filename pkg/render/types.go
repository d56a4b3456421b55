package render

import "time"

// TaskState is the backend-owned lifecycle state of a generation task.
type TaskState string

const (
	StatePending     TaskState = "pending"
	StateDownloading TaskState = "downloading"
	StateProcessing  TaskState = "processing"
	StateCompleted   TaskState = "completed"
	StateFailed      TaskState = "failed"
	StateCancelled   TaskState = "cancelled"
)

// Terminal reports whether the state is final. The backend never moves a
// task out of a terminal state.
func (s TaskState) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled:
		return true
	}
	return false
}

// Progress is the backend's partial-progress report for downloading and
// processing states. ETASeconds is optional; a nil value means the backend
// did not estimate one.
type Progress struct {
	TotalFiles      int      `json:"total_files"`
	CompletedFiles  int      `json:"completed_files"`
	FailedFiles     int      `json:"failed_files"`
	ActiveFiles     int      `json:"active_files"`
	TotalSize       int64    `json:"total_size"`
	DownloadedSize  int64    `json:"downloaded_size"`
	ProgressPercent float64  `json:"progress_percent"`
	DownloadSpeed   float64  `json:"download_speed"`
	ETASeconds      *float64 `json:"eta_seconds,omitempty"`
}

// TaskInfo is one authoritative status observation of a task, returned on
// submission and on every subsequent poll or pushed event.
type TaskInfo struct {
	TaskID       string     `json:"task_id"`
	Status       TaskState  `json:"status"`
	Message      string     `json:"message,omitempty"`
	Progress     *Progress  `json:"progress,omitempty"`
	DraftPath    string     `json:"draft_path,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at,omitzero"`
	UpdatedAt    time.Time  `json:"updated_at,omitzero"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// SyncResult is the synchronous-mode response: the draft was rendered
// within the request round trip.
type SyncResult struct {
	StatusCode int    `json:"status_code"`
	DraftPath  string `json:"draft_path"`
	Message    string `json:"message,omitempty"`
}

// OK reports whether the backend signalled success for a synchronous run.
func (r *SyncResult) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// RawSegment carries one native segment with its resolved material and any
// auxiliary materials it references, all deep-cloned from the project tree.
type RawSegment struct {
	TrackID          string                      `json:"track_id"`
	TrackType        string                      `json:"track_type"`
	TrackName        string                      `json:"track_name,omitempty"`
	MaterialID       string                      `json:"material_id,omitempty"`
	Segment          map[string]any              `json:"segment"`
	Material         map[string]any              `json:"material,omitempty"`
	MaterialCategory string                      `json:"material_category,omitempty"`
	ExtraMaterials   map[string][]map[string]any `json:"extra_materials,omitempty"`
}

// RawMaterial is one native material record with the category bucket it was
// found under in the project tree.
type RawMaterial struct {
	ID       string         `json:"id"`
	Category string         `json:"category"`
	Data     map[string]any `json:"data"`
}

// CanvasConfig is the output canvas geometry.
type CanvasConfig struct {
	CanvasWidth  int `json:"canvas_width,omitempty"`
	CanvasHeight int `json:"canvas_height,omitempty"`
}

// DraftConfig is caller-supplied render configuration, passed through
// verbatim. The backend is authoritative for rejecting bad values.
type DraftConfig struct {
	CanvasConfig *CanvasConfig  `json:"canvas_config,omitempty"`
	Config       map[string]any `json:"config,omitempty"`
	FPS          int            `json:"fps,omitempty"`
}

// GenerateRequest is the fully resolved request body consumed by the
// backend, in both synchronous and asynchronous modes.
type GenerateRequest struct {
	RuleGroup      any                                  `json:"ruleGroup"`
	Materials      []map[string]any                     `json:"materials"`
	TestData       any                                  `json:"testData"`
	SegmentStyles  map[string]map[string]map[string]any `json:"segment_styles,omitempty"`
	UseRawSegments bool                                 `json:"use_raw_segments"`
	RawSegments    []RawSegment                         `json:"raw_segments,omitempty"`
	RawMaterials   []RawMaterial                        `json:"raw_materials,omitempty"`
	DraftConfig    *DraftConfig                         `json:"draft_config,omitempty"`
}
