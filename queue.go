package serialqueue

import (
	"container/list"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// job is one entry in a Queue's run list.
type job struct {
	work Task
	elem *list.Element // nil once dequeued by the drain or removed by cancellation
}

// delayedSubmission tracks the two-stage lifecycle of a SubmitAfter
// registration: timer pending, then (once fired) enqueued as an ordinary
// async job. All fields are guarded by the owning Queue's schedulerMu.
type delayedSubmission struct {
	work       Task
	cancelled  bool
	fired      bool
	timerToken *CancelToken
	asyncToken *CancelToken
}

// Queue is a serial dispatch queue: work items submitted to it run
// one-at-a-time, in submission order, and never overlap with each other or
// with a synchronous caller. See the package doc for the concurrency model.
type Queue struct {
	pool     Pool
	features FeatureFlags
	name     string
	logger   Logger

	// schedulerMu guards everything below it in this block. No user code
	// ever runs while schedulerMu is held.
	schedulerMu sync.Mutex
	state       schedulerState
	disposed    bool
	runQueue    list.List // of *job
	timers      map[*delayedSubmission]struct{}

	// executionMu is held for the duration of exactly one work item at a
	// time, serializing drain items against synchronous callers.
	executionMu sync.Mutex

	errSink atomic.Pointer[func(error)]
}

// New constructs a Queue backed by pool, with the given feature flags and
// options applied on top.
func New(pool Pool, features FeatureFlags, opts ...Option) *Queue {
	cfg := resolveOptions(features, opts)
	q := &Queue{
		pool:     pool,
		features: cfg.features,
		name:     cfg.name,
		logger:   cfg.logger,
		timers:   make(map[*delayedSubmission]struct{}),
	}
	return q
}

// NewDefault constructs a Queue backed by a small process-wide default
// WorkerPool, for callers that do not need control over pool sizing.
func NewDefault(features FeatureFlags, opts ...Option) *Queue {
	return New(defaultPoolInstance(), features, opts...)
}

// Name returns the queue's configured name, or "" if none was given.
func (q *Queue) Name() string { return q.name }

// SubmitAsync appends work to the tail of the run queue and, if the queue
// was idle, asks the pool to drain it. It never blocks and never runs work
// inline. Submissions are FIFO: if SubmitAsync(a) happens-before
// SubmitAsync(b) in program order on any goroutine, a is dequeued before b.
func (q *Queue) SubmitAsync(work Task) (*CancelToken, error) {
	q.schedulerMu.Lock()
	if q.disposed {
		q.schedulerMu.Unlock()
		return nil, ErrDisposed
	}
	token, needsDrain := q.submitAsyncLocked(work)
	q.schedulerMu.Unlock()

	if needsDrain {
		q.requestDrain()
	}
	return token, nil
}

// submitAsyncLocked appends work to the run queue and performs the
// Idle->Scheduled transition if applicable. The caller must hold
// schedulerMu and must call requestDrain (after releasing schedulerMu) if
// needsDrain is true.
func (q *Queue) submitAsyncLocked(work Task) (token *CancelToken, needsDrain bool) {
	j := &job{work: work}
	j.elem = q.runQueue.PushBack(j)

	token = newCancelToken(func() {
		q.schedulerMu.Lock()
		if j.elem != nil {
			q.runQueue.Remove(j.elem)
			j.elem = nil
		}
		q.schedulerMu.Unlock()
	})

	if q.state == stateIdle {
		q.state = stateScheduled
		needsDrain = true
	}
	return token, needsDrain
}

// requestDrain hands the drain loop to the pool. If the pool refuses it, the
// failure is logged and, if this goroutine was the one that transitioned the
// queue to Scheduled, the state is rolled back to Idle so a later submission
// retries rather than leaving the queue permanently stuck believing a drain
// is already owed.
func (q *Queue) requestDrain() {
	if err := q.pool.Submit(q.drain); err != nil {
		q.schedulerMu.Lock()
		if q.state == stateScheduled {
			q.state = stateIdle
		}
		q.schedulerMu.Unlock()
		q.logEvent(LogLevelError, "pool rejected drain", fmt.Errorf("serialqueue: pool submit: %w", err))
	}
}

// SubmitSync runs work on the caller's own goroutine and blocks until it
// completes. It serializes with every other work item on this Queue: if the
// queue is idle, or the calling goroutine is already executing on behalf of
// this queue (directly or via a ContinuationBridge-joined goroutine), work
// runs immediately; otherwise a gate item is enqueued and SubmitSync waits
// for the drain to reach it before running work, so that everything
// submitted before this call has already finished.
//
// Panics raised by work propagate to the caller verbatim; they are never
// sent to the unhandled-error sink, since the caller is right here to see
// them.
func (q *Queue) SubmitSync(work Task) error {
	_, prev := pushCurrent(q)
	defer popCurrent()

	nested := prev.Contains(q)

	q.schedulerMu.Lock()
	if q.disposed {
		q.schedulerMu.Unlock()
		return ErrDisposed
	}

	if nested {
		// The ancestor frame that pushed q already owns executionMu (or,
		// for a gate rendezvous, the drain goroutine does on our behalf
		// while parked in the gate below). Re-acquiring a non-reentrant
		// sync.Mutex here would deadlock, so the QueueStack membership
		// test stands in for lock ownership.
		q.schedulerMu.Unlock()
		work()
		return nil
	}

	if q.state == stateIdle {
		q.schedulerMu.Unlock()
		q.executionMu.Lock()
		defer q.executionMu.Unlock()
		work()
		return nil
	}

	// Rendezvous path: park a gate at the tail of the run queue. Once the
	// drain reaches it, the gate signals asyncReady and blocks (holding
	// executionMu) until we signal syncDone, guaranteeing no other item
	// runs concurrently with work.
	asyncReady := make(chan struct{})
	syncDone := make(chan struct{})
	_, needsDrain := q.submitAsyncLocked(func() {
		close(asyncReady)
		<-syncDone
	})
	q.schedulerMu.Unlock()

	if needsDrain {
		q.requestDrain()
	}

	<-asyncReady
	defer close(syncDone)
	work()
	return nil
}

// SubmitAfter schedules work to be submitted asynchronously after at least
// delay has elapsed. The returned CancelToken is a two-stage wrapper: before
// the timer fires, Dispose cancels the timer; after it fires, Dispose
// cancels the resulting async submission instead. Dispose is safe and
// idempotent at any stage.
func (q *Queue) SubmitAfter(delay time.Duration, work Task) (*CancelToken, error) {
	q.schedulerMu.Lock()
	if q.disposed {
		q.schedulerMu.Unlock()
		return nil, ErrDisposed
	}
	q.schedulerMu.Unlock()

	state := &delayedSubmission{work: work}
	timerToken, err := q.pool.ScheduleAfter(delay, func() {
		q.onTimerFire(state)
	})
	if err != nil {
		return nil, fmt.Errorf("serialqueue: schedule timer: %w", err)
	}

	q.schedulerMu.Lock()
	if q.disposed {
		q.schedulerMu.Unlock()
		timerToken.Dispose()
		return nil, ErrDisposed
	}
	state.timerToken = timerToken
	q.timers[state] = struct{}{}
	q.schedulerMu.Unlock()

	outer := newCancelToken(func() {
		q.schedulerMu.Lock()
		state.cancelled = true
		var timerTok, asyncTok *CancelToken
		if state.fired {
			asyncTok = state.asyncToken
		} else {
			timerTok = state.timerToken
			delete(q.timers, state)
		}
		q.schedulerMu.Unlock()

		if timerTok != nil {
			timerTok.Dispose()
		}
		if asyncTok != nil {
			asyncTok.Dispose()
		}
	})
	return outer, nil
}

// onTimerFire runs on a pool goroutine when state's timer elapses.
func (q *Queue) onTimerFire(state *delayedSubmission) {
	q.schedulerMu.Lock()
	delete(q.timers, state)
	if state.cancelled || q.disposed {
		q.schedulerMu.Unlock()
		return
	}
	token, needsDrain := q.submitAsyncLocked(state.work)
	state.fired = true
	state.asyncToken = token
	q.schedulerMu.Unlock()

	if needsDrain {
		q.requestDrain()
	}
}

// drain is submitted to the pool whenever the queue transitions out of
// Idle. It runs on whichever pool goroutine picks it up and dequeues work
// items FIFO until the run queue is empty, then returns.
func (q *Queue) drain() {
	pushCurrent(q)
	defer popCurrent()

	var bridge *ContinuationBridge
	if q.features.Has(CooperativeContinuations) {
		bridge = &ContinuationBridge{q: q}
	}
	prevBridge := installContinuationBridge(bridge)
	defer installContinuationBridge(prevBridge)

	q.schedulerMu.Lock()
	q.state = stateProcessing
	if q.disposed {
		q.state = stateIdle
		q.schedulerMu.Unlock()
		return
	}

	for {
		front := q.runQueue.Front()
		if front == nil {
			break
		}
		j := front.Value.(*job)
		q.runQueue.Remove(front)
		j.elem = nil
		q.schedulerMu.Unlock()

		q.runProtected(j.work)

		q.schedulerMu.Lock()
		if q.disposed {
			break
		}
	}
	q.state = stateIdle
	q.schedulerMu.Unlock()
}

// runProtected executes work under executionMu, recovering any panic and
// forwarding it to the unhandled-error sink and the logger only after
// executionMu has been released, so a slow or absent sink never serializes
// behind the next work item.
func (q *Queue) runProtected(work Task) {
	var recovered any
	func() {
		q.executionMu.Lock()
		defer q.executionMu.Unlock()
		defer func() {
			recovered = recover()
		}()
		work()
	}()

	if recovered == nil {
		return
	}
	err := &PanicError{Queue: q.name, Value: recovered}
	q.logEvent(LogLevelError, "panic", err)
	if sink := q.errSink.Load(); sink != nil {
		(*sink)(err)
	}
}

// OnUnhandledError registers cb to be invoked, on a pool goroutine, for
// every panic escaping an asynchronous or delayed work item. Only the most
// recently registered callback is kept; pass nil to remove it.
func (q *Queue) OnUnhandledError(cb func(error)) {
	if cb == nil {
		q.errSink.Store(nil)
		return
	}
	q.errSink.Store(&cb)
}

// VerifyOnQueue returns ErrWrongQueue if the calling goroutine is not
// currently executing a work item for q.
func (q *Queue) VerifyOnQueue() error {
	if !currentStack().Contains(q) {
		return ErrWrongQueue
	}
	return nil
}

// Dispose marks the queue permanently inert: every pending work item and
// timer token is dropped, and every later submission fails with
// ErrDisposed. A drain already running completes its current item and then
// observes disposed and exits. Dispose is idempotent.
func (q *Queue) Dispose() {
	q.schedulerMu.Lock()
	if q.disposed {
		q.schedulerMu.Unlock()
		return
	}
	q.disposed = true

	for e := q.runQueue.Front(); e != nil; e = e.Next() {
		e.Value.(*job).elem = nil
	}
	q.runQueue.Init()

	snapshot := make([]*delayedSubmission, 0, len(q.timers))
	for st := range q.timers {
		snapshot = append(snapshot, st)
	}
	q.timers = make(map[*delayedSubmission]struct{})
	q.schedulerMu.Unlock()

	for _, st := range snapshot {
		st.timerToken.Dispose()
	}
}

func (q *Queue) logEvent(level LogLevel, message string, err error) {
	q.logger.Log(LogEvent{Level: level, Queue: q.name, Message: message, Err: err})
}
