package tracker

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many tasks are watched at once. Watchers queued beyond
// the limit wait for a slot; independent watchers share no mutable state,
// so the semaphore is the only coordination point.
type Pool struct {
	sem *semaphore.Weighted

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewPool creates a Pool allowing up to maxConcurrent watched tasks.
func NewPool(maxConcurrent int64) *Pool {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Pool{sem: semaphore.NewWeighted(maxConcurrent)}
}

// Start initialises the pool's context. Must be called before Watch.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctx, p.cancel = context.WithCancel(ctx)
}

// Stop cancels all watchers and waits for them to wind down.
func (p *Pool) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}

// Watch acquires a slot (waiting if the pool is full), starts the watcher,
// and releases the slot once the task is terminal. The optional onDone
// callback fires with the final snapshot.
func (p *Pool) Watch(w *Watcher, onDone func(Snapshot)) error {
	p.mu.Lock()
	ctx := p.ctx
	p.mu.Unlock()
	if ctx == nil {
		return fmt.Errorf("pool not started")
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		if err := p.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer p.sem.Release(1)

		w.Start(ctx)
		defer w.Stop()

		select {
		case <-w.Done():
			if onDone != nil {
				onDone(w.Snapshot())
			}
		case <-ctx.Done():
		}
	}()
	return nil
}
