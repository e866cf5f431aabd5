package serialqueue

import (
	"sync"

	"github.com/petermattis/goid"
)

// QueueStack is the per-goroutine ordered sequence of queues whose work item
// is currently on the calling goroutine's call stack. It is how nested
// dispatch is detected: a work item running on behalf of a Queue may itself
// call SubmitSync on the same Queue (directly, or via a goroutine that
// joined through ContinuationBridge.Send), and that nested call must not
// deadlock against the outer one.
//
// Go has no language-level thread-local storage, so this is built on top of
// goroutine ids (github.com/petermattis/goid) keyed into a sync.Map. Each
// goroutine only ever reads and writes the slice stored under its own id, so
// the slice itself needs no internal synchronization — only the map lookup
// does, and sync.Map is tuned for exactly this "disjoint keys, rare
// contention" access pattern.
//
// A QueueStack is created lazily on first push and removed from the
// registry when it empties, so the registry's size is bounded by the number
// of goroutines currently inside a nested dispatch, not by total goroutines
// ever created.
type QueueStack struct {
	queues []*Queue
}

var stackRegistry sync.Map // goid.Get() -> *QueueStack

// Contains reports whether q is anywhere in the stack.
func (s *QueueStack) Contains(q *Queue) bool {
	if s == nil {
		return false
	}
	for _, e := range s.queues {
		if e == q {
			return true
		}
	}
	return false
}

// Top returns the innermost queue on the stack, or nil if the stack is
// empty or nil.
func (s *QueueStack) Top() *Queue {
	if s == nil || len(s.queues) == 0 {
		return nil
	}
	return s.queues[len(s.queues)-1]
}

// currentStack returns the calling goroutine's QueueStack, or nil if it has
// never pushed anything. It never creates an entry.
func currentStack() *QueueStack {
	v, ok := stackRegistry.Load(goid.Get())
	if !ok {
		return nil
	}
	return v.(*QueueStack)
}

// pushCurrent pushes q onto the calling goroutine's QueueStack, creating the
// stack on first use, and returns the stack as it was immediately before the
// push (so the caller can test reentrancy against the pre-push contents).
func pushCurrent(q *Queue) (stack *QueueStack, prev *QueueStack) {
	gid := goid.Get()
	v, _ := stackRegistry.LoadOrStore(gid, &QueueStack{})
	stack = v.(*QueueStack)
	prev = &QueueStack{queues: append([]*Queue(nil), stack.queues...)}
	stack.queues = append(stack.queues, q)
	return stack, prev
}

// popCurrent pops the innermost entry from the calling goroutine's
// QueueStack and, if the stack is now empty, removes it from the registry.
func popCurrent() {
	gid := goid.Get()
	v, ok := stackRegistry.Load(gid)
	if !ok {
		return
	}
	stack := v.(*QueueStack)
	if n := len(stack.queues); n > 0 {
		stack.queues = stack.queues[:n-1]
	}
	if len(stack.queues) == 0 {
		stackRegistry.Delete(gid)
	}
}

// CurrentQueue returns the innermost queue on the calling goroutine's
// QueueStack, or nil if the calling goroutine is not currently executing a
// work item for any queue.
func CurrentQueue() *Queue {
	return currentStack().Top()
}
