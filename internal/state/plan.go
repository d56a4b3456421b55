// internal/state/plan.go
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Plan is a named, repeatable generation run: which project snapshot, rule
// group, and test dataset to resolve, and optionally a cron schedule that
// fires it automatically.
type Plan struct {
	Name         string `json:"name"`
	ProjectPath  string `json:"project_path"`
	GroupPath    string `json:"group_path"`
	TestDataPath string `json:"test_data_path"`
	Schedule     string `json:"schedule,omitempty"`
	Sync         bool   `json:"sync,omitempty"`
	NotifyKey    string `json:"notify_key,omitempty"`
	Enabled      bool   `json:"enabled"`
}

// PlanStore is a JSON-file-backed store for plans.
type PlanStore struct {
	path string
	mu   sync.RWMutex
}

// NewPlanStore creates a new file-backed PlanStore at the given file path.
func NewPlanStore(path string) *PlanStore {
	return &PlanStore{path: path}
}

// Path returns the file path used by this store.
func (s *PlanStore) Path() string {
	return s.path
}

// List returns all plans. Returns an empty slice if the file doesn't exist.
func (s *PlanStore) List() ([]*Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plans, err := s.load()
	if err != nil {
		return nil, err
	}
	if plans == nil {
		return []*Plan{}, nil
	}
	return plans, nil
}

// Get finds a plan by name. Returns an error if not found.
func (s *PlanStore) Get(name string) (*Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plans, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, plan := range plans {
		if plan.Name == name {
			return plan, nil
		}
	}
	return nil, fmt.Errorf("plan not found: %s", name)
}

// Add appends a plan. Returns an error if a plan with the same name already exists.
func (s *PlanStore) Add(plan *Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plans, err := s.load()
	if err != nil {
		return err
	}
	for _, existing := range plans {
		if existing.Name == plan.Name {
			return fmt.Errorf("plan already exists: %s", plan.Name)
		}
	}
	plans = append(plans, plan)
	return s.save(plans)
}

// Remove deletes a plan by name. Returns an error if not found.
func (s *PlanStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plans, err := s.load()
	if err != nil {
		return err
	}
	for i, plan := range plans {
		if plan.Name == name {
			plans = append(plans[:i], plans[i+1:]...)
			return s.save(plans)
		}
	}
	return fmt.Errorf("plan not found: %s", name)
}

// SetEnabled toggles the enabled flag for a plan. Returns an error if not found.
func (s *PlanStore) SetEnabled(name string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plans, err := s.load()
	if err != nil {
		return err
	}
	for _, plan := range plans {
		if plan.Name == name {
			plan.Enabled = enabled
			return s.save(plans)
		}
	}
	return fmt.Errorf("plan not found: %s", name)
}

func (s *PlanStore) load() ([]*Plan, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read plans file: %w", err)
	}

	var plans []*Plan
	if err := json.Unmarshal(data, &plans); err != nil {
		return nil, fmt.Errorf("unmarshal plans: %w", err)
	}
	return plans, nil
}

func (s *PlanStore) save(plans []*Plan) error {
	data, err := json.MarshalIndent(plans, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal plans: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create plans dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp plans: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp plans: %w", err)
	}
	return nil
}
