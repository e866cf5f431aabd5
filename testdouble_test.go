package serialqueue

import (
	"sync"
	"time"
)

// fakePool is a deterministic test double for Pool, grounded on the
// teacher's loopTestHooks injection-point idiom: rather than letting a
// background goroutine race the test, Submit just appends the drain
// function to a slice under a mutex and the test decides when to call it.
type fakePool struct {
	mu      sync.Mutex
	pending []Task
	closed  bool
}

func (p *fakePool) Submit(task Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.pending = append(p.pending, task)
	return nil
}

// ScheduleAfter is not exercised by any fakePool-based test: every test that
// needs SubmitAfter determinism uses a real WorkerPool and waits out the
// delay instead, since the interesting behavior being tested (two-stage
// cancellation) depends on real timer semantics rather than drain ordering.
func (p *fakePool) ScheduleAfter(delay time.Duration, task Task) (*CancelToken, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPoolClosed
	}
	timer := time.AfterFunc(delay, func() {
		_ = p.Submit(task)
	})
	return newCancelToken(func() {
		timer.Stop()
	}), nil
}

// runPending synchronously runs every drain callable queued via Submit so
// far, in submission order, and clears the queue. Tests call this instead
// of sleeping to let the pool "pick up" work.
func (p *fakePool) runPending() {
	p.mu.Lock()
	tasks := p.pending
	p.pending = nil
	p.mu.Unlock()
	for _, task := range tasks {
		task()
	}
}

func (p *fakePool) pendingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}
