package tracker

import (
	"context"

	"github.com/user/draftgen/pkg/render"
)

// Handle observes one submission through to its terminal state. Callers get
// the same surface whether the run was synchronous or asynchronously
// watched.
type Handle interface {
	// Done is closed once the task reached a terminal state.
	Done() <-chan struct{}

	// Snapshot returns the current reconciled view.
	Snapshot() Snapshot

	// Final blocks until the task is terminal or the context ends.
	Final(ctx context.Context) (Snapshot, error)

	// Cancel asks the backend to stop the task. Terminal tasks ignore it.
	Cancel(ctx context.Context) error
}

// immediate is the synchronous-mode Handle: the outcome was known the
// moment the request returned.
type immediate struct {
	snap Snapshot
	done chan struct{}
}

// Immediate wraps a synchronous submission outcome. A 2xx result maps to
// completed with the embedded draft path; any error maps to failed carrying
// the error's message.
func Immediate(result *render.SyncResult, err error) Handle {
	snap := Snapshot{}
	switch {
	case err != nil:
		snap.State = render.StateFailed
		snap.ErrorMessage = err.Error()
	case result.OK():
		snap.State = render.StateCompleted
		snap.DraftPath = result.DraftPath
		snap.Message = result.Message
	default:
		snap.State = render.StateFailed
		snap.Message = result.Message
		snap.ErrorMessage = result.Message
	}

	done := make(chan struct{})
	close(done)
	return &immediate{snap: snap, done: done}
}

func (h *immediate) Done() <-chan struct{} { return h.done }
func (h *immediate) Snapshot() Snapshot    { return h.snap }

func (h *immediate) Final(context.Context) (Snapshot, error) {
	return h.snap, nil
}

func (h *immediate) Cancel(context.Context) error {
	// Already terminal; nothing to cancel.
	return nil
}
