// internal/engine/payload.go
package engine

import (
	"github.com/user/draftgen/internal/types"
	"github.com/user/draftgen/pkg/render"
)

// BuildRequest resolves a rule group and test dataset against a project
// snapshot into the request the render backend consumes.
//
// Validation runs first; any violation aborts before anything else is
// computed and no partial payload is ever returned (the error is a
// *ValidationError carrying every violation). On success the materials are
// deep-cloned from the catalog in required order, per-track style overrides
// are resolved, and the native tree, when present, is mined for the raw
// segment subset. UseRawSegments is true iff that subset is non-empty.
// draftCfg is passed through verbatim; the backend validates it.
func BuildRequest(
	group *types.RuleGroup,
	data *types.TestData,
	catalog types.Catalog,
	tracks []types.Track,
	native map[string]any,
	draftCfg *render.DraftConfig,
) (*render.GenerateRequest, error) {
	if violations := Validate(group, data, catalog); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	requiredIDs := RequiredMaterialIDs(group, data)

	materials := make([]map[string]any, 0, len(requiredIDs))
	for _, id := range requiredIDs {
		mat, ok := catalog.Lookup(id)
		if !ok {
			// Validate just checked these; a miss here means the catalog
			// changed under us, surface it the same way.
			return nil, &ValidationError{Violations: []Violation{missingMaterial(id)}}
		}
		materials = append(materials, CloneMap(map[string]any(mat)))
	}

	req := &render.GenerateRequest{
		RuleGroup:   group,
		Materials:   materials,
		TestData:    data,
		DraftConfig: draftCfg,
	}

	if styles := ResolveStyles(tracks, requiredIDs); len(styles) > 0 {
		req.SegmentStyles = styles
	}

	if raw := ExtractRaw(native, requiredIDs); raw != nil && len(raw.Segments) > 0 {
		req.UseRawSegments = true
		req.RawSegments = raw.Segments
		req.RawMaterials = raw.Materials
	}

	return req, nil
}
