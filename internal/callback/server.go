// internal/callback/server.go
package callback

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/user/draftgen/internal/state"
	"github.com/user/draftgen/pkg/render"
)

// Server is a lightweight HTTP handler that accepts task status events
// pushed by the render backend and routes them to subscribed watchers.
// It also serves the local run index for inspection.
type Server struct {
	runs *state.RunStore
	mux  *http.ServeMux

	mu   sync.RWMutex
	subs map[string]chan render.TaskInfo
}

// NewServer creates a new callback Server backed by the given run store.
func NewServer(runs *state.RunStore) *Server {
	s := &Server{
		runs: runs,
		mux:  http.NewServeMux(),
		subs: make(map[string]chan render.TaskInfo),
	}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /callbacks/tasks/", s.handleTaskEvent)
	s.mux.HandleFunc("GET /api/runs", s.handleRuns)
	return s
}

// ServeHTTP delegates to the internal mux, implementing http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Subscribe returns the channel that will receive pushed observations for
// the given task. Subscribing again for the same task replaces the
// previous channel.
func (s *Server) Subscribe(taskID string) <-chan render.TaskInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan render.TaskInfo, 16)
	if old, ok := s.subs[taskID]; ok {
		close(old)
	}
	s.subs[taskID] = ch
	return ch
}

// Unsubscribe drops the subscription for a task and closes its channel.
func (s *Server) Unsubscribe(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.subs[taskID]; ok {
		close(ch)
		delete(s.subs, taskID)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleTaskEvent(w http.ResponseWriter, r *http.Request) {
	taskID := strings.TrimPrefix(r.URL.Path, "/callbacks/tasks/")
	if taskID == "" {
		http.Error(w, `{"error":"task id required"}`, http.StatusBadRequest)
		return
	}

	var info render.TaskInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if info.TaskID == "" {
		info.TaskID = taskID
	}

	// Send under the read lock so an Unsubscribe cannot close the channel
	// mid-send.
	s.mu.RLock()
	if ch, subscribed := s.subs[taskID]; subscribed {
		select {
		case ch <- info:
		default:
			// Subscriber is not keeping up; the next authoritative event
			// supersedes this one anyway.
			slog.Warn("dropping task event", "task_id", taskID, "status", info.Status)
		}
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.runs.List()
	if err != nil {
		slog.Error("list runs failed", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}
