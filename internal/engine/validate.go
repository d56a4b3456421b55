// internal/engine/validate.go
package engine

import (
	"fmt"
	"strings"

	"github.com/user/draftgen/internal/types"
)

// ViolationKind classifies a validation violation.
type ViolationKind string

const (
	ViolationMissingRule     ViolationKind = "missing_rule"
	ViolationMissingMaterial ViolationKind = "missing_material"
)

// Violation is one named validation failure. Subject is the category or
// material id the message refers to.
type Violation struct {
	Kind    ViolationKind `json:"kind"`
	Subject string        `json:"subject"`
	Message string        `json:"message"`
}

func missingRule(category string) Violation {
	return Violation{
		Kind:    ViolationMissingRule,
		Subject: category,
		Message: fmt.Sprintf("missing rule for category: %s", category),
	}
}

func missingMaterial(id string) Violation {
	return Violation{
		Kind:    ViolationMissingMaterial,
		Subject: id,
		Message: fmt.Sprintf("missing material: %s", id),
	}
}

// ValidationError aggregates every violation found for a run. A run with
// any violation produces no payload at all.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// RequiredMaterialIDs returns the distinct material ids referenced by the
// rules that the test items match, in first-seen order. Items whose
// category has no rule contribute nothing.
func RequiredMaterialIDs(group *types.RuleGroup, data *types.TestData) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range data.Items {
		rule, ok := group.Rule(item.Type)
		if !ok {
			continue
		}
		for _, id := range rule.MaterialIDs {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// Validate checks that every test item's category has a rule and that every
// material the matched rules reference exists in the catalog. It is pure
// and never fails hard; callers decide whether violations abort the run.
// An empty item list trivially validates (nothing to do, not an error).
func Validate(group *types.RuleGroup, data *types.TestData, catalog types.Catalog) []Violation {
	var out []Violation

	seenCategory := make(map[string]bool)
	for _, item := range data.Items {
		if _, ok := group.Rule(item.Type); ok {
			continue
		}
		if !seenCategory[item.Type] {
			seenCategory[item.Type] = true
			out = append(out, missingRule(item.Type))
		}
	}

	for _, id := range RequiredMaterialIDs(group, data) {
		if _, ok := catalog.Lookup(id); !ok {
			out = append(out, missingMaterial(id))
		}
	}
	return out
}
