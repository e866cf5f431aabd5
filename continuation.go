package serialqueue

import (
	"sync"

	"github.com/petermattis/goid"
)

// ContinuationBridge lets code that has left a work item's goroutine — to
// perform a blocking call on a goroutine of its own, say — post its
// continuation back onto the originating Queue, without that goroutine ever
// joining the QueueStack itself. It is the explicit stand-in for an
// ambient async/await continuation hook, which Go has no language support
// for; see Continuation and RunDetached.
//
// A ContinuationBridge keeps forwarding to its Queue after the drain that
// installed it has returned. Post and Send return ErrDisposed for a nil
// bridge or once the Queue has been disposed.
type ContinuationBridge struct {
	q *Queue
}

// Post schedules fn to run on the bridge's Queue asynchronously and returns
// immediately, matching Queue.SubmitAsync.
func (b *ContinuationBridge) Post(fn Task) error {
	if b == nil || b.q == nil {
		return ErrDisposed
	}
	_, err := b.q.SubmitAsync(fn)
	return err
}

// Send schedules fn to run on the bridge's Queue and blocks the calling
// goroutine until it completes, matching Queue.SubmitSync. Because the
// calling goroutine never pushed the Queue onto its own QueueStack, Send
// always takes the rendezvous path (or the idle fast path) and never the
// nested fast path, even if fn itself calls back into code running on the
// Queue's own goroutine.
func (b *ContinuationBridge) Send(fn Task) error {
	if b == nil || b.q == nil {
		return ErrDisposed
	}
	return b.q.SubmitSync(fn)
}

// continuationBridgeRegistry maps a goroutine id to the ContinuationBridge
// installed for it by the nearest enclosing drain, mirroring QueueStack's
// registry design in queuestack.go.
var continuationBridgeRegistry sync.Map // goid.Get() -> *ContinuationBridge

// installContinuationBridge installs bridge as the calling goroutine's
// current ContinuationBridge and returns whatever was installed before it,
// so the caller can restore it on the way out. A nil bridge removes the
// entry.
func installContinuationBridge(bridge *ContinuationBridge) *ContinuationBridge {
	gid := goid.Get()
	prev, _ := continuationBridgeRegistry.Load(gid)
	if bridge == nil {
		continuationBridgeRegistry.Delete(gid)
	} else {
		continuationBridgeRegistry.Store(gid, bridge)
	}
	if prev == nil {
		return nil
	}
	return prev.(*ContinuationBridge)
}

// Continuation returns the ContinuationBridge for the queue currently
// executing on the calling goroutine, or nil if the calling goroutine is
// not inside a drain, or the queue was constructed without the
// CooperativeContinuations feature.
func Continuation() *ContinuationBridge {
	gid := goid.Get()
	v, ok := continuationBridgeRegistry.Load(gid)
	if !ok {
		return nil
	}
	return v.(*ContinuationBridge)
}

// Result is the outcome of a RunDetached call.
type Result struct {
	Value any
	Err   error
}

// RunDetached runs fn on a new goroutine, detached from the Queue's drain,
// and posts its result back onto the originating Queue's ContinuationBridge
// once fn returns. It is grounded on the teacher event loop's Promisify:
// the same "run on a throwaway goroutine, recover panics, resolve back onto
// the origin" shape, adapted from a promise-resolution callback to a Go
// channel since this package has no promise type of its own.
//
// RunDetached must be called from inside a work item running on a Queue's
// drain (that is,
// Continuation() must be non-nil); otherwise it returns a closed channel
// carrying ErrWrongQueue.
func RunDetached(fn func() (any, error)) <-chan Result {
	out := make(chan Result, 1)
	bridge := Continuation()
	if bridge == nil {
		out <- Result{Err: ErrWrongQueue}
		close(out)
		return out
	}

	go func() {
		value, err := runDetachedCaptured(fn)
		postErr := bridge.Post(func() {
			out <- Result{Value: value, Err: err}
			close(out)
		})
		if postErr != nil {
			out <- Result{Err: postErr}
			close(out)
		}
	}()

	return out
}

// runDetachedCaptured runs fn, converting a panic into a *PanicError result
// rather than letting it crash the detached goroutine.
func runDetachedCaptured(fn func() (any, error)) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Queue: "(detached)", Value: r}
		}
	}()
	return fn()
}
