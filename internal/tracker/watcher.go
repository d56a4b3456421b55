package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/user/draftgen/pkg/render"
)

// Watcher drives a Mirror to its terminal state by polling the backend on
// an interval, optionally alongside a channel of pushed status
// observations. Both paths funnel through the same Observe reducer, so a
// poll read and a pushed event can interleave freely; the poll keeps a
// task from stalling when the backend never pushes.
type Watcher struct {
	renderer render.Renderer
	mirror   *Mirror
	taskID   string
	interval time.Duration
	events   <-chan render.TaskInfo
	onUpdate func(Snapshot)

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// WatcherOption configures optional behavior on a Watcher.
type WatcherOption func(*Watcher)

// WithEvents adds a stream of pushed observations consumed alongside the
// interval poll. The stream lowers latency; the poll still runs and
// reconciles the mirror if the stream goes quiet.
func WithEvents(ch <-chan render.TaskInfo) WatcherOption {
	return func(w *Watcher) { w.events = ch }
}

// WithOnUpdate sets a callback invoked after every observation.
func WithOnUpdate(fn func(Snapshot)) WatcherOption {
	return func(w *Watcher) { w.onUpdate = fn }
}

// NewWatcher creates a watcher for the given task. The initial
// acknowledgement, when available, seeds the mirror so callers see the
// backend's pending state instead of the local starting view.
func NewWatcher(renderer render.Renderer, taskID string, interval time.Duration, ack *render.TaskInfo, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		renderer: renderer,
		mirror:   NewMirror(taskID),
		taskID:   taskID,
		interval: interval,
	}
	for _, opt := range opts {
		opt(w)
	}
	if ack != nil {
		w.observe(ack)
	}
	return w
}

// Start begins tracking. It returns immediately; use Done or Final to wait.
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	if w.events != nil {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.consume(ctx)
		}()
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.poll(ctx)
	}()
}

// Stop halts tracking without affecting the backend task.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *Watcher) Done() <-chan struct{} { return w.mirror.Done() }
func (w *Watcher) Snapshot() Snapshot    { return w.mirror.Snapshot() }

// Final blocks until the task reaches a terminal state or ctx ends.
func (w *Watcher) Final(ctx context.Context) (Snapshot, error) {
	select {
	case <-w.mirror.Done():
		return w.mirror.Snapshot(), nil
	case <-ctx.Done():
		return w.mirror.Snapshot(), ctx.Err()
	}
}

// Cancel records the local cancel intent and issues the backend cancel.
// The backend may still complete the task first; whatever terminal state
// the next observation carries is authoritative.
func (w *Watcher) Cancel(ctx context.Context) error {
	w.mirror.RequestCancel()
	return w.renderer.Cancel(ctx, w.taskID)
}

// poll reads the task status on an interval until a terminal state.
func (w *Watcher) poll(ctx context.Context) {
	backoff := newPollBackoff(w.interval)
	timer := time.NewTimer(backoff.next())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.mirror.Done():
			return
		case <-timer.C:
		}

		info, err := w.renderer.Task(ctx, w.taskID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			backoff.failure()
			slog.Warn("task poll failed", "task_id", w.taskID, "error", err)
		} else {
			backoff.reset()
			w.observe(info)
		}
		timer.Reset(backoff.next())
	}
}

// consume applies pushed observations until the channel closes or a
// terminal state arrives. The poll loop keeps running either way.
func (w *Watcher) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.mirror.Done():
			return
		case info, ok := <-w.events:
			if !ok {
				if !w.mirror.Snapshot().Terminal() {
					slog.Warn("task event stream closed before terminal state", "task_id", w.taskID)
				}
				return
			}
			w.observe(&info)
		}
	}
}

func (w *Watcher) observe(info *render.TaskInfo) {
	w.mirror.Observe(info)
	if w.onUpdate != nil {
		w.onUpdate(w.mirror.Snapshot())
	}
}
