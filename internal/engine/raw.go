// internal/engine/raw.go
package engine

import (
	"sort"

	"github.com/user/draftgen/pkg/render"
)

// RawPayload is the minimal native-tree subset needed to regenerate the
// materials under test with full fidelity.
type RawPayload struct {
	Segments  []render.RawSegment
	Materials []render.RawMaterial
}

// indexedMaterial is one native material record with the category bucket it
// was found under.
type indexedMaterial struct {
	category string
	record   map[string]any
}

// ExtractRaw walks the project's native JSON tree and harvests every
// segment that references a required material, directly or through its
// extra_material_refs list, together with deep clones of the material
// records involved. Returns nil when the tree is absent or malformed, or
// when no segment references a required material; nil tells the payload
// builder to take the normalized-only path.
func ExtractRaw(native map[string]any, requiredIDs []string) *RawPayload {
	if native == nil || len(requiredIDs) == 0 {
		return nil
	}
	index := indexNativeMaterials(native)
	if index == nil {
		return nil
	}

	trackList, ok := native["tracks"].([]any)
	if !ok {
		return nil
	}

	want := make(map[string]bool, len(requiredIDs))
	for _, id := range requiredIDs {
		want[id] = true
	}

	var payload RawPayload
	seenMaterial := make(map[string]bool)

	for _, t := range trackList {
		track, ok := t.(map[string]any)
		if !ok {
			continue
		}
		trackID := stringField(track, "id")
		trackType := stringField(track, "type")
		trackName := stringField(track, "name")

		segList, ok := track["segments"].([]any)
		if !ok {
			continue
		}
		for _, s := range segList {
			seg, ok := s.(map[string]any)
			if !ok {
				continue
			}
			materialID := stringField(seg, "material_id")
			extraRefs := stringList(seg, "extra_material_refs")

			if !segmentRequired(materialID, extraRefs, want) {
				continue
			}

			raw := render.RawSegment{
				TrackID:    trackID,
				TrackType:  trackType,
				TrackName:  trackName,
				MaterialID: materialID,
				Segment:    CloneMap(seg),
			}

			if entry, ok := index[materialID]; ok {
				raw.MaterialCategory = entry.category
				raw.Material = CloneMap(entry.record)
				collectMaterial(&payload, seenMaterial, materialID, entry)
			} else if materialID != "" {
				raw.MaterialCategory = inferCategory(trackType, "")
			}

			for _, ref := range extraRefs {
				entry, ok := index[ref]
				if !ok {
					continue
				}
				if raw.ExtraMaterials == nil {
					raw.ExtraMaterials = make(map[string][]map[string]any)
				}
				raw.ExtraMaterials[entry.category] = append(raw.ExtraMaterials[entry.category], CloneMap(entry.record))
				collectMaterial(&payload, seenMaterial, ref, entry)
			}

			payload.Segments = append(payload.Segments, raw)
		}
	}

	if len(payload.Segments) == 0 {
		return nil
	}
	return &payload
}

// indexNativeMaterials builds an id lookup across every category bucket of
// the native tree's materials map. Buckets are visited in sorted category
// order so an id duplicated across buckets resolves deterministically.
func indexNativeMaterials(native map[string]any) map[string]indexedMaterial {
	buckets, ok := native["materials"].(map[string]any)
	if !ok {
		return nil
	}

	categories := make([]string, 0, len(buckets))
	for category := range buckets {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	index := make(map[string]indexedMaterial)
	for _, category := range categories {
		records, ok := buckets[category].([]any)
		if !ok {
			continue
		}
		for _, r := range records {
			record, ok := r.(map[string]any)
			if !ok {
				continue
			}
			id := stringField(record, "id")
			if id == "" {
				continue
			}
			if _, exists := index[id]; !exists {
				index[id] = indexedMaterial{category: category, record: record}
			}
		}
	}
	return index
}

func segmentRequired(materialID string, extraRefs []string, want map[string]bool) bool {
	if want[materialID] {
		return true
	}
	for _, ref := range extraRefs {
		if want[ref] {
			return true
		}
	}
	return false
}

func collectMaterial(payload *RawPayload, seen map[string]bool, id string, entry indexedMaterial) {
	if seen[id] {
		return
	}
	seen[id] = true
	payload.Materials = append(payload.Materials, render.RawMaterial{
		ID:       id,
		Category: entry.category,
		Data:     CloneMap(entry.record),
	})
}

// inferCategory maps a track or material type to the backend's category
// bucket when the material record itself is not in the index. The owning
// track's type wins when known.
func inferCategory(trackType, materialType string) string {
	switch trackType {
	case "video":
		return "videos"
	case "audio":
		return "audios"
	case "text":
		return "texts"
	case "sticker":
		return "stickers"
	case "effect":
		return "video_effects"
	}
	switch materialType {
	case "video", "photo", "image":
		return "videos"
	case "audio", "music", "sound", "extract_music":
		return "audios"
	case "text", "subtitle":
		return "texts"
	case "sticker":
		return "stickers"
	}
	if materialType != "" {
		return materialType + "s"
	}
	return ""
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func stringList(m map[string]any, key string) []string {
	list, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
