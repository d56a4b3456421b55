package render

import "context"

// Renderer defines the interface for the draft rendering backend.
// Implementations handle protocol-specific details such as request
// formatting, authentication, and response parsing.
type Renderer interface {
	// Generate submits a request in synchronous mode and blocks until the
	// backend returns the finished draft (or an error).
	Generate(ctx context.Context, req *GenerateRequest) (*SyncResult, error)

	// Submit submits a request in asynchronous mode and returns the
	// backend's initial task acknowledgement.
	Submit(ctx context.Context, req *GenerateRequest) (*TaskInfo, error)

	// Task fetches the current authoritative status of a task.
	Task(ctx context.Context, taskID string) (*TaskInfo, error)

	// Cancel asks the backend to cancel a task. The backend may complete
	// the task before honoring the cancel; callers must treat the next
	// status read as authoritative.
	Cancel(ctx context.Context, taskID string) error
}

// Config holds common configuration for renderer clients.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout int // seconds, 0 means the implementation default
}
