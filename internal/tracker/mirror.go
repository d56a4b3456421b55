package tracker

import (
	"sync"
	"time"

	"github.com/user/draftgen/pkg/render"
)

// Snapshot is one consistent view of a tracked task.
type Snapshot struct {
	TaskID       string
	State        render.TaskState
	Progress     *render.Progress
	DraftPath    string
	Message      string
	ErrorMessage string
	UpdatedAt    time.Time
}

// Terminal reports whether the snapshot's state is final.
func (s Snapshot) Terminal() bool { return s.State.Terminal() }

// Mirror is the client-side mirror of one backend task. State transitions
// are driven exclusively by backend observations; the only local moves are
// the "starting" view before the first acknowledgement and the optimistic
// cancelled view after a user cancel. Both yield to the next authoritative
// observation, and a terminal backend state is never overwritten.
type Mirror struct {
	mu              sync.RWMutex
	taskID          string
	server          *render.TaskInfo
	cancelRequested bool

	done     chan struct{}
	doneOnce sync.Once
}

// NewMirror creates a mirror for the given task id. Until the first
// observation arrives the task reads as pending.
func NewMirror(taskID string) *Mirror {
	return &Mirror{
		taskID: taskID,
		done:   make(chan struct{}),
	}
}

// Observe records an authoritative backend status. Observations always
// overwrite: a recomputed progress_percent may legitimately move backwards
// and is never max-merged. Once a terminal state has been observed, later
// observations are ignored.
func (m *Mirror) Observe(info *render.TaskInfo) {
	if info == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.server != nil && m.server.Status.Terminal() {
		return
	}

	copied := *info
	if copied.Progress != nil {
		p := *copied.Progress
		deriveETA(&p)
		copied.Progress = &p
	}
	m.server = &copied

	if copied.Status.Terminal() {
		m.doneOnce.Do(func() { close(m.done) })
	}
}

// RequestCancel marks the local cancel intent. The mirror reads as
// cancelled until the backend reports a terminal state, which wins even
// when it is not cancelled (the cancel lost the race).
func (m *Mirror) RequestCancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.server != nil && m.server.Status.Terminal() {
		return
	}
	m.cancelRequested = true
}

// Done is closed once a terminal backend state has been observed.
func (m *Mirror) Done() <-chan struct{} { return m.done }

// Snapshot returns the current reconciled view.
func (m *Mirror) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{TaskID: m.taskID, State: render.StatePending}
	if m.server != nil {
		snap.State = m.server.Status
		snap.DraftPath = m.server.DraftPath
		snap.Message = m.server.Message
		snap.ErrorMessage = m.server.ErrorMessage
		snap.UpdatedAt = m.server.UpdatedAt
		if m.server.Progress != nil {
			p := *m.server.Progress
			snap.Progress = &p
		}
	}
	if m.cancelRequested && !snap.State.Terminal() {
		snap.State = render.StateCancelled
	}
	return snap
}

// deriveETA fills in eta_seconds from remaining bytes and speed when the
// backend did not estimate one.
func deriveETA(p *render.Progress) {
	if p.ETASeconds != nil || p.DownloadSpeed <= 0 {
		return
	}
	remaining := p.TotalSize - p.DownloadedSize
	if remaining <= 0 {
		return
	}
	eta := float64(remaining) / p.DownloadSpeed
	p.ETASeconds = &eta
}
