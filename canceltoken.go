package serialqueue

import "sync/atomic"

// CancelToken is a one-shot, idempotent disposable. It owns a cleanup
// closure until Dispose is called, at which point the closure is atomically
// taken and invoked exactly once; every later call to Dispose, from any
// goroutine, observes "already taken" and is a safe no-op.
//
// Queue.SubmitAsync and Queue.SubmitAfter return a CancelToken. Disposing it
// attempts to remove the associated work item before it runs; if the item
// has already started or finished, disposal is a no-op rather than a
// failure. For SubmitAfter, disposal before the timer fires cancels the
// timer, and disposal after it fires removes the enqueued item if it has not
// started yet.
type CancelToken struct {
	cleanup atomic.Pointer[func()]
}

// newCancelToken wraps fn in a CancelToken. fn must be safe to call from any
// goroutine and must itself be idempotent-safe to the extent its side
// effects allow (CancelToken guarantees it is called at most once, but not
// which goroutine calls it).
func newCancelToken(fn func()) *CancelToken {
	t := &CancelToken{}
	t.cleanup.Store(&fn)
	return t
}

// Dispose runs the token's cleanup exactly once, across however many times
// and from however many goroutines Dispose is called. It never returns an
// error and never panics on repeat use.
func (t *CancelToken) Dispose() {
	if t == nil {
		return
	}
	if fn := t.cleanup.Swap(nil); fn != nil {
		(*fn)()
	}
}
