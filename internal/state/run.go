// internal/state/run.go
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/user/draftgen/internal/types"
	"github.com/user/draftgen/pkg/render"
)

// RunRecord is one submitted generation run in the local history. The
// backend owns the task lifecycle; this record is the durable slice of the
// client-side mirror.
type RunRecord struct {
	ID           types.RunID      `json:"id"`
	GroupID      types.GroupID    `json:"group_id"`
	GroupTitle   string           `json:"group_title,omitempty"`
	TaskID       string           `json:"task_id,omitempty"`
	Mode         string           `json:"mode"` // "sync" or "async"
	Status       render.TaskState `json:"status"`
	DraftPath    string           `json:"draft_path,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// RunStore is a JSON-file-backed run index at runs/runs.json.
type RunStore struct {
	root string
	mu   sync.RWMutex
}

// NewRunStore creates a new file-backed RunStore rooted at the given directory.
func NewRunStore(root string) *RunStore {
	return &RunStore{root: root}
}

func (s *RunStore) indexPath() string {
	return filepath.Join(s.root, "runs", "runs.json")
}

func (s *RunStore) loadIndex() ([]*RunRecord, error) {
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read run index: %w", err)
	}

	var runs []*RunRecord
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, fmt.Errorf("unmarshal run index: %w", err)
	}
	return runs, nil
}

func (s *RunStore) saveIndex(runs []*RunRecord) error {
	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run index: %w", err)
	}

	dir := filepath.Dir(s.indexPath())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create runs dir: %w", err)
	}

	// Atomic write: write to temp file then rename
	tmp := s.indexPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp index: %w", err)
	}
	if err := os.Rename(tmp, s.indexPath()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp index: %w", err)
	}
	return nil
}

// Add appends a run record to the index.
func (s *RunStore) Add(rec *RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs, err := s.loadIndex()
	if err != nil {
		return err
	}
	runs = append(runs, rec)
	return s.saveIndex(runs)
}

// List returns all runs, newest first.
func (s *RunStore) List() ([]*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if runs == nil {
		runs = []*RunRecord{}
	}
	return runs, nil
}

// Get finds a run by run id or, failing that, by backend task id.
func (s *RunStore) Get(id string) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	for _, run := range runs {
		if string(run.ID) == id {
			return run, nil
		}
	}
	for _, run := range runs {
		if run.TaskID == id && run.TaskID != "" {
			return run, nil
		}
	}
	return nil, fmt.Errorf("run not found: %s", id)
}

// SetTask attaches the backend task ID returned by a submission.
func (s *RunStore) SetTask(id types.RunID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs, err := s.loadIndex()
	if err != nil {
		return err
	}
	for _, run := range runs {
		if run.ID == id {
			run.TaskID = taskID
			run.UpdatedAt = time.Now()
			return s.saveIndex(runs)
		}
	}
	return fmt.Errorf("run not found: %s", id)
}

// SetOutcome records a run's latest observed state.
func (s *RunStore) SetOutcome(id types.RunID, status render.TaskState, draftPath, errorMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs, err := s.loadIndex()
	if err != nil {
		return err
	}
	for _, run := range runs {
		if run.ID == id {
			run.Status = status
			run.DraftPath = draftPath
			run.ErrorMessage = errorMessage
			run.UpdatedAt = time.Now()
			return s.saveIndex(runs)
		}
	}
	return fmt.Errorf("run not found: %s", id)
}
