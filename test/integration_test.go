//go:build integration

package test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/user/draftgen/internal/engine"
	"github.com/user/draftgen/internal/project"
	"github.com/user/draftgen/internal/state"
	"github.com/user/draftgen/internal/tracker"
	"github.com/user/draftgen/internal/types"
	"github.com/user/draftgen/pkg/render"
	"github.com/user/draftgen/pkg/render/httpapi"
)

const projectFixture = `{
  "materials": {
    "videos": [
      {"id": "m1", "type": "video", "path": "a.mp4", "width": 1920, "height": 1080},
      {"id": "m2", "type": "video", "path": "b.mp4", "width": 1920, "height": 1080}
    ]
  },
  "tracks": [
    {
      "id": "t1",
      "type": "video",
      "render_index": 0,
      "segments": [
        {"id": "s1", "material_id": "m1", "target_timerange": {"start": 0, "duration": 5000000}},
        {"id": "s2", "material_id": "m2", "target_timerange": {"start": 5000000, "duration": 5000000}}
      ]
    }
  ]
}`

const groupFixture = `{
  "id": "g1",
  "title": "daily cut",
  "rules": [
    {"type": "intro", "material_ids": ["m1"]},
    {"type": "body", "material_ids": ["m2"]}
  ]
}`

const testDataFixture = `{
  "items": [
    {"type": "intro", "data": {"text": "hello"}},
    {"type": "body", "data": {"text": "world"}}
  ]
}`

// fakeBackend serves the task lifecycle: a submit acknowledges pending,
// each subsequent status poll advances progress until completion.
type fakeBackend struct {
	mu    sync.Mutex
	polls int
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/tasks", func(w http.ResponseWriter, r *http.Request) {
		var req render.GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.Materials) != 2 {
			http.Error(w, "unexpected material count", http.StatusBadRequest)
			return
		}
		writeJSON(w, &render.TaskInfo{TaskID: "task-1", Status: render.StatePending})
	})
	mux.HandleFunc("GET /api/v1/tasks/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/v1/tasks/")
		b.mu.Lock()
		b.polls++
		polls := b.polls
		b.mu.Unlock()

		info := &render.TaskInfo{TaskID: id, Status: render.StateProcessing}
		switch {
		case polls >= 3:
			info.Status = render.StateCompleted
			info.DraftPath = "/drafts/out"
		default:
			pct := float64(polls) * 40
			info.Progress = &render.Progress{TotalFiles: 2, CompletedFiles: polls, ProgressPercent: pct}
		}
		writeJSON(w, info)
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEndToEnd(t *testing.T) {
	dir := t.TempDir()
	projectPath := writeFixture(t, dir, "draft.json", projectFixture)
	groupPath := writeFixture(t, dir, "group.json", groupFixture)
	dataPath := writeFixture(t, dir, "testdata.json", testDataFixture)

	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	proj, err := project.Load(projectPath)
	if err != nil {
		t.Fatal(err)
	}
	group, err := project.LoadRuleGroup(groupPath)
	if err != nil {
		t.Fatal(err)
	}
	data, err := project.LoadTestData(dataPath)
	if err != nil {
		t.Fatal(err)
	}

	req, err := engine.BuildRequest(group, data, proj.Catalog, proj.Tracks, proj.Native, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !req.UseRawSegments {
		t.Error("expected raw segment path for a fully native project")
	}

	renderer := httpapi.New(&render.Config{BaseURL: srv.URL, Timeout: 5})
	ctx := context.Background()

	runs := state.NewRunStore(dir)
	rec := &state.RunRecord{
		ID:         types.NewRunID(),
		GroupID:    group.ID,
		GroupTitle: group.Title,
		Mode:       "async",
		Status:     render.StatePending,
	}
	if err := runs.Add(rec); err != nil {
		t.Fatal(err)
	}

	info, err := renderer.Submit(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if info.TaskID != "task-1" {
		t.Fatalf("unexpected task id %q", info.TaskID)
	}
	if err := runs.SetTask(rec.ID, info.TaskID); err != nil {
		t.Fatal(err)
	}

	w := tracker.NewWatcher(renderer, info.TaskID, 10*time.Millisecond, info)
	w.Start(ctx)
	defer w.Stop()

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	snap, err := w.Final(waitCtx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.State != render.StateCompleted {
		t.Fatalf("expected completed, got %s", snap.State)
	}
	if snap.DraftPath != "/drafts/out" {
		t.Errorf("unexpected draft path %q", snap.DraftPath)
	}

	if err := runs.SetOutcome(rec.ID, snap.State, snap.DraftPath, snap.ErrorMessage); err != nil {
		t.Fatal(err)
	}
	got, err := runs.Get(string(rec.ID))
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != render.StateCompleted || got.DraftPath != "/drafts/out" {
		t.Errorf("run record not updated: %+v", got)
	}
}
