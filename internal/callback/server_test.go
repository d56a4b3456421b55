// internal/callback/server_test.go
package callback

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/user/draftgen/internal/state"
	"github.com/user/draftgen/pkg/render"
)

func TestServer_Health(t *testing.T) {
	srv := NewServer(state.NewRunStore(t.TempDir()))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestServer_RoutesEventToSubscriber(t *testing.T) {
	srv := NewServer(state.NewRunStore(t.TempDir()))
	events := srv.Subscribe("task-1")
	defer srv.Unsubscribe("task-1")

	body := `{"status":"downloading","progress":{"progress_percent":40}}`
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/callbacks/tasks/task-1", strings.NewReader(body)))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	select {
	case info := <-events:
		if info.TaskID != "task-1" {
			t.Errorf("expected task id filled from path, got %q", info.TaskID)
		}
		if info.Status != render.StateDownloading {
			t.Errorf("expected downloading, got %s", info.Status)
		}
	case <-time.After(time.Second):
		t.Fatal("event not routed to subscriber")
	}
}

func TestServer_EventWithoutSubscriberAccepted(t *testing.T) {
	srv := NewServer(state.NewRunStore(t.TempDir()))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/callbacks/tasks/ghost", strings.NewReader(`{"status":"completed"}`)))

	if rec.Code != http.StatusAccepted {
		t.Errorf("unclaimed events must still be accepted, got %d", rec.Code)
	}
}

func TestServer_RejectsBadEvent(t *testing.T) {
	srv := NewServer(state.NewRunStore(t.TempDir()))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/callbacks/tasks/task-1", strings.NewReader("not json")))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestServer_ListRuns(t *testing.T) {
	runs := state.NewRunStore(t.TempDir())
	if err := runs.Add(&state.RunRecord{ID: "run-1", Mode: "async", Status: render.StatePending, CreatedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	srv := NewServer(runs)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var listed []state.RunRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 || listed[0].ID != "run-1" {
		t.Errorf("unexpected runs: %+v", listed)
	}
}
