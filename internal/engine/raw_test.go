// internal/engine/raw_test.go
package engine

import (
	"testing"
)

func testNativeTree() map[string]any {
	return map[string]any{
		"materials": map[string]any{
			"videos": []any{
				map[string]any{"id": "m1", "type": "video", "path": "a.mp4"},
			},
			"audios": []any{
				map[string]any{"id": "m2", "type": "audio", "path": "b.mp3"},
			},
			"speeds": []any{
				map[string]any{"id": "x1", "speed": 1.5},
			},
		},
		"tracks": []any{
			map[string]any{
				"id":   "t1",
				"type": "video",
				"name": "main",
				"segments": []any{
					map[string]any{
						"id":                  "s1",
						"material_id":         "m1",
						"extra_material_refs": []any{"x1"},
					},
					map[string]any{
						"id":          "s2",
						"material_id": "unrelated",
					},
				},
			},
			map[string]any{
				"id":   "t2",
				"type": "audio",
				"segments": []any{
					map[string]any{
						"id":          "s3",
						"material_id": "m2",
					},
				},
			},
		},
	}
}

func TestExtractRaw_NilTree(t *testing.T) {
	if got := ExtractRaw(nil, []string{"m1"}); got != nil {
		t.Errorf("expected nil for absent tree, got %v", got)
	}
}

func TestExtractRaw_MalformedTree(t *testing.T) {
	if got := ExtractRaw(map[string]any{"materials": "nope"}, []string{"m1"}); got != nil {
		t.Errorf("expected nil for malformed tree, got %v", got)
	}
}

func TestExtractRaw_NoQualifyingSegment(t *testing.T) {
	if got := ExtractRaw(testNativeTree(), []string{"absent"}); got != nil {
		t.Errorf("expected nil when nothing references a required material, got %+v", got)
	}
}

func TestExtractRaw_DirectReference(t *testing.T) {
	payload := ExtractRaw(testNativeTree(), []string{"m1"})
	if payload == nil {
		t.Fatal("expected a payload")
	}
	if len(payload.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(payload.Segments))
	}

	seg := payload.Segments[0]
	if seg.TrackID != "t1" || seg.TrackType != "video" || seg.TrackName != "main" {
		t.Errorf("track fields wrong: %+v", seg)
	}
	if seg.MaterialID != "m1" || seg.MaterialCategory != "videos" {
		t.Errorf("material resolution wrong: id=%s category=%s", seg.MaterialID, seg.MaterialCategory)
	}
	if seg.Material["path"] != "a.mp4" {
		t.Errorf("expected resolved material record, got %v", seg.Material)
	}
	if len(seg.ExtraMaterials["speeds"]) != 1 {
		t.Errorf("expected the speeds aux record, got %v", seg.ExtraMaterials)
	}
}

func TestExtractRaw_ExtraRefQualifiesSegment(t *testing.T) {
	// Only the auxiliary record is required; the segment must still be
	// harvested because its extra_material_refs resolve to it.
	payload := ExtractRaw(testNativeTree(), []string{"x1"})
	if payload == nil {
		t.Fatal("expected a payload")
	}
	if len(payload.Segments) != 1 || payload.Segments[0].Segment["id"] != "s1" {
		t.Fatalf("expected segment s1, got %+v", payload.Segments)
	}
}

func TestExtractRaw_MaterialsDeduplicated(t *testing.T) {
	payload := ExtractRaw(testNativeTree(), []string{"m1", "m2", "x1"})
	if payload == nil {
		t.Fatal("expected a payload")
	}
	seen := make(map[string]string)
	for _, mat := range payload.Materials {
		if _, dup := seen[mat.ID]; dup {
			t.Errorf("material %s listed twice", mat.ID)
		}
		seen[mat.ID] = mat.Category
	}
	if seen["m1"] != "videos" || seen["m2"] != "audios" || seen["x1"] != "speeds" {
		t.Errorf("unexpected categories: %v", seen)
	}
}

func TestExtractRaw_DoesNotAliasSource(t *testing.T) {
	native := testNativeTree()
	payload := ExtractRaw(native, []string{"m1"})
	if payload == nil {
		t.Fatal("expected a payload")
	}

	payload.Segments[0].Segment["id"] = "mutated"
	payload.Segments[0].Material["path"] = "mutated"

	segs := native["tracks"].([]any)[0].(map[string]any)["segments"].([]any)
	if segs[0].(map[string]any)["id"] != "s1" {
		t.Error("source segment was mutated through the payload")
	}
	vids := native["materials"].(map[string]any)["videos"].([]any)
	if vids[0].(map[string]any)["path"] != "a.mp4" {
		t.Error("source material was mutated through the payload")
	}
}

func TestInferCategory(t *testing.T) {
	cases := []struct {
		trackType, materialType, want string
	}{
		{"video", "", "videos"},
		{"audio", "", "audios"},
		{"effect", "", "video_effects"},
		{"", "photo", "videos"},
		{"", "subtitle", "texts"},
		{"", "transition", "transitions"},
		{"", "", ""},
	}
	for _, tc := range cases {
		if got := inferCategory(tc.trackType, tc.materialType); got != tc.want {
			t.Errorf("inferCategory(%q, %q) = %q, want %q", tc.trackType, tc.materialType, got, tc.want)
		}
	}
}
