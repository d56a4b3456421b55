// internal/state/payload.go
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/draftgen/internal/types"
)

// PayloadStore archives the exact request body of every submitted run as an
// individual JSON file at runs/<runID>/request.json, so a run can be
// inspected or replayed byte-for-byte later.
type PayloadStore struct {
	root string
}

// NewPayloadStore creates a new file-backed PayloadStore rooted at the given directory.
func NewPayloadStore(root string) *PayloadStore {
	return &PayloadStore{root: root}
}

func (p *PayloadStore) payloadPath(runID types.RunID) string {
	return filepath.Join(p.root, "runs", string(runID), "request.json")
}

// Save archives the request body for a run.
func (p *PayloadStore) Save(runID types.RunID, request any) error {
	data, err := json.MarshalIndent(request, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal request payload: %w", err)
	}

	path := p.payloadPath(runID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write request payload: %w", err)
	}
	return nil
}

// Load returns the archived request body for a run.
func (p *PayloadStore) Load(runID types.RunID) (json.RawMessage, error) {
	data, err := os.ReadFile(p.payloadPath(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no archived payload for run: %s", runID)
		}
		return nil, fmt.Errorf("read request payload: %w", err)
	}
	return json.RawMessage(data), nil
}
