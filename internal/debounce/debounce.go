// Package debounce runs the latest of a burst of requests after a quiet
// period and cancels everything it supersedes.
package debounce

import (
	"context"
	"sync"
	"time"
)

// Task schedules runs of a function returning T. Each Schedule call
// supersedes the previous one: a pending run never starts, an in-flight run
// has its context cancelled, and a superseded result is never delivered.
type Task[T any] struct {
	delay time.Duration

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTask returns a Task waiting delay before each run.
func NewTask[T any](delay time.Duration) *Task[T] {
	return &Task[T]{delay: delay}
}

// Schedule arranges for run to be called after the delay and for deliver to
// receive its result if no later Schedule or Cancel happened in between.
func (t *Task[T]) Schedule(ctx context.Context, run func(context.Context) (T, error), deliver func(T, error)) {
	t.mu.Lock()
	t.gen++
	gen := t.gen
	if t.cancel != nil {
		t.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.wg.Add(1)
	t.mu.Unlock()

	go func() {
		defer t.wg.Done()
		defer cancel()

		timer := time.NewTimer(t.delay)
		select {
		case <-runCtx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		v, err := run(runCtx)
		if !t.current(gen) || runCtx.Err() != nil {
			return
		}
		deliver(v, err)
	}()
}

// Cancel drops any pending or in-flight run.
func (t *Task[T]) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// Wait blocks until every scheduled goroutine has finished.
func (t *Task[T]) Wait() {
	t.wg.Wait()
}

func (t *Task[T]) current(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return gen == t.gen
}
