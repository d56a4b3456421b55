// internal/engine/styles.go
package engine

import (
	"github.com/user/draftgen/internal/types"
)

// DefaultStyleKey is the reserved per-material key holding the first
// override encountered anywhere on the timeline, used by the backend when a
// placement's track is not otherwise disambiguated.
const DefaultStyleKey = "__default__"

// ResolveStyles builds a per-material override map keyed by the track that
// carries the placement, plus the DefaultStyleKey fallback. Tracks are
// walked in document order and the first override wins for every key: a
// later placement of the same material on the same track never replaces an
// earlier one. Backward-compatible output depends on that exact precedence.
func ResolveStyles(tracks []types.Track, requiredIDs []string) map[string]map[string]map[string]any {
	want := make(map[string]bool, len(requiredIDs))
	for _, id := range requiredIDs {
		want[id] = true
	}

	out := make(map[string]map[string]map[string]any)
	for _, track := range tracks {
		for i := range track.Segments {
			seg := &track.Segments[i]
			if !want[seg.MaterialID] {
				continue
			}
			override := segmentOverride(seg)
			if len(override) == 0 {
				continue
			}

			perTrack, ok := out[seg.MaterialID]
			if !ok {
				perTrack = make(map[string]map[string]any)
				out[seg.MaterialID] = perTrack
			}
			putIfAbsent(perTrack, track.ID, override)
			putIfAbsent(perTrack, DefaultStyleKey, CloneMap(override))
		}
	}
	return out
}

// segmentOverride merges a segment's style map with its volume/speed
// shorthand fields. Style-declared values take precedence; the shorthands
// fill in only when the style map does not already carry the key.
func segmentOverride(seg *types.Segment) map[string]any {
	override := make(map[string]any, len(seg.Style)+2)
	for k, v := range seg.Style {
		override[k] = v
	}
	if seg.Volume != nil {
		if _, ok := override["volume"]; !ok {
			override["volume"] = *seg.Volume
		}
	}
	if seg.Speed != nil {
		if _, ok := override["speed"]; !ok {
			override["speed"] = *seg.Speed
		}
	}
	return override
}

// putIfAbsent inserts only when the key is absent; the first override
// encountered keeps the slot.
func putIfAbsent(m map[string]map[string]any, key string, v map[string]any) {
	if _, ok := m[key]; !ok {
		m[key] = v
	}
}
