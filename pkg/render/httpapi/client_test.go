package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/user/draftgen/pkg/render"
)

func testClient(url string) *Client {
	return New(&render.Config{BaseURL: url, APIKey: "test-key", Timeout: 5})
}

func TestClientGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Error("missing or invalid auth header")
		}
		if r.URL.Path != "/api/v1/drafts/generate" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status_code": 200,
			"draft_path":  "/drafts/out",
		})
	}))
	defer server.Close()

	result, err := testClient(server.URL).Generate(context.Background(), &render.GenerateRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if !result.OK() {
		t.Errorf("expected success, got status %d", result.StatusCode)
	}
	if result.DraftPath != "/drafts/out" {
		t.Errorf("unexpected draft path %q", result.DraftPath)
	}
}

func TestClientGenerate_StatusFromHTTP(t *testing.T) {
	// Body without status_code; the HTTP status fills it in.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"draft_path": "/drafts/out"})
	}))
	defer server.Close()

	result, err := testClient(server.URL).Generate(context.Background(), &render.GenerateRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if result.StatusCode != 200 {
		t.Errorf("expected status 200, got %d", result.StatusCode)
	}
}

func TestClientSubmitAndTask(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/tasks":
			json.NewEncoder(w).Encode(render.TaskInfo{TaskID: "task-9", Status: render.StatePending})
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/tasks/task-9":
			json.NewEncoder(w).Encode(render.TaskInfo{TaskID: "task-9", Status: render.StateProcessing})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := testClient(server.URL)
	ctx := context.Background()

	info, err := client.Submit(ctx, &render.GenerateRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if info.TaskID != "task-9" || info.Status != render.StatePending {
		t.Errorf("unexpected ack: %+v", info)
	}

	info, err = client.Task(ctx, "task-9")
	if err != nil {
		t.Fatal(err)
	}
	if info.Status != render.StateProcessing {
		t.Errorf("unexpected status %q", info.Status)
	}
}

func TestClientSubmit_MissingTaskID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "pending"})
	}))
	defer server.Close()

	if _, err := testClient(server.URL).Submit(context.Background(), &render.GenerateRequest{}); err == nil {
		t.Fatal("expected error for missing task_id")
	}
}

func TestClientCancel(t *testing.T) {
	var cancelled bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/api/v1/tasks/task-9/cancel" {
			cancelled = true
			w.WriteHeader(http.StatusAccepted)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	if err := testClient(server.URL).Cancel(context.Background(), "task-9"); err != nil {
		t.Fatal(err)
	}
	if !cancelled {
		t.Error("cancel endpoint not hit")
	}
}

func TestClientErrorCarriesBackendMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{"error": "canvas_config invalid"})
	}))
	defer server.Close()

	_, err := testClient(server.URL).Submit(context.Background(), &render.GenerateRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "canvas_config invalid") {
		t.Errorf("error does not carry backend message: %v", err)
	}
}
