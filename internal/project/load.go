// internal/project/load.go
package project

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/user/draftgen/internal/types"
)

// Project is one loaded snapshot of an editing project: the material
// catalog and normalized tracks the engine resolves against, plus the
// backend's native JSON tree kept verbatim for raw extraction. The native
// tree may be partially absent; the engine degrades to the normalized-only
// path.
type Project struct {
	Catalog types.Catalog
	Tracks  []types.Track
	Native  map[string]any
}

// fileTracks decodes just the track layout from the project file.
type fileTracks struct {
	Tracks []types.Track `json:"tracks"`
}

// Load reads a project snapshot from a draft JSON file.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}

	var native map[string]any
	if err := json.Unmarshal(data, &native); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}

	var ft fileTracks
	if err := json.Unmarshal(data, &ft); err != nil {
		return nil, fmt.Errorf("parse tracks: %w", err)
	}

	return &Project{
		Catalog: buildCatalog(native),
		Tracks:  ft.Tracks,
		Native:  native,
	}, nil
}

// buildCatalog flattens every material bucket of the native tree into an
// id-keyed catalog.
func buildCatalog(native map[string]any) types.Catalog {
	catalog := make(types.Catalog)
	buckets, ok := native["materials"].(map[string]any)
	if !ok {
		return catalog
	}
	for _, v := range buckets {
		records, ok := v.([]any)
		if !ok {
			continue
		}
		for _, r := range records {
			record, ok := r.(map[string]any)
			if !ok {
				continue
			}
			mat := types.Material(record)
			if mat.ID() == "" {
				continue
			}
			catalog[mat.ID()] = mat
		}
	}
	return catalog
}

// LoadRuleGroup reads a rule group from a JSON file.
func LoadRuleGroup(path string) (*types.RuleGroup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule group: %w", err)
	}
	var group types.RuleGroup
	if err := json.Unmarshal(data, &group); err != nil {
		return nil, fmt.Errorf("parse rule group: %w", err)
	}
	if len(group.Rules) == 0 {
		return nil, fmt.Errorf("rule group %q has no rules", path)
	}
	return &group, nil
}

// LoadTestData reads a test dataset from a JSON file. An empty item list
// is allowed; the engine treats it as nothing to do.
func LoadTestData(path string) (*types.TestData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read test data: %w", err)
	}
	var td types.TestData
	if err := json.Unmarshal(data, &td); err != nil {
		return nil, fmt.Errorf("parse test data: %w", err)
	}
	return &td, nil
}
