// internal/types/models.go
package types

import (
	"time"
)

// Rule maps one content category to the project materials that may fill it.
type Rule struct {
	Type        string         `json:"type"`
	Title       string         `json:"title,omitempty"`
	MaterialIDs []string       `json:"material_ids"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// RuleGroup is a user-authored set of rules. Rule types should be unique
// within a group; the model does not enforce it, validation reports on use.
type RuleGroup struct {
	ID        GroupID   `json:"id"`
	Title     string    `json:"title,omitempty"`
	Rules     []Rule    `json:"rules"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// Rule returns the first rule matching the given category type.
func (g *RuleGroup) Rule(category string) (*Rule, bool) {
	for i := range g.Rules {
		if g.Rules[i].Type == category {
			return &g.Rules[i], true
		}
	}
	return nil, false
}

// TestItem describes one piece of content to inject, keyed by category.
type TestItem struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// TrackInfo is the lightweight track descriptor carried in test data.
type TrackInfo struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	Type  string `json:"type"`
}

// TestData is the ephemeral per-run input, constructed fresh for each run.
type TestData struct {
	Tracks []TrackInfo `json:"tracks,omitempty"`
	Items  []TestItem  `json:"items"`
}
