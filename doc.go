// Package serialqueue provides a serial dispatch queue: a lightweight
// concurrency primitive that serializes execution of submitted work items on
// top of a shared worker pool.
//
// # Architecture
//
// Many [Queue] instances can share a small [Pool] of goroutines. Each Queue
// independently guarantees that the work items submitted to it run
// one-at-a-time, in submission order, and never overlap with themselves or
// with a synchronous caller — without dedicating a goroutine per queue.
//
// The core of a Queue is a two-mutex scheduling discipline: a scheduler
// mutex guards scheduling metadata (the run queue, the timer set, the state
// machine) and is never held across user code, and an execution mutex is
// held for the duration of a single work item, serializing it against both
// the drain loop and any synchronous caller.
//
// # Reentrancy
//
// [Queue.SubmitSync] may be called from within a work item already running
// on the same Queue (directly, or transitively via a goroutine that has
// joined the queue's [ContinuationBridge]). A per-goroutine [QueueStack]
// records which queues are currently "on the call stack" of the calling
// goroutine, which is how reentrant calls are detected and fast-pathed
// without re-acquiring the execution mutex (Go's [sync.Mutex] is not
// reentrant, unlike e.g. a .NET Monitor; see DESIGN.md).
//
// # Cooperative continuations
//
// When [CooperativeContinuations] is enabled (the default), work items can
// fetch the active [ContinuationBridge] via [Continuation] and use it to
// route a continuation — running on another goroutine, e.g. after a blocking
// call — back onto the originating Queue, preserving the property that
// "everything touching this resource runs on this queue" across a
// suspension point.
//
// # Usage
//
//	pool := serialqueue.NewWorkerPool(4)
//	defer pool.Close()
//
//	q := serialqueue.New(pool, serialqueue.DefaultFeatures, serialqueue.WithName("accounts"))
//	defer q.Dispose()
//
//	q.OnUnhandledError(func(err error) {
//		log.Printf("accounts queue: %v", err)
//	})
//
//	token, _ := q.SubmitAsync(func() {
//		fmt.Println("runs serially with every other item on q")
//	})
//	defer token.Dispose()
//
//	if err := q.SubmitSync(func() {
//		fmt.Println("blocks until it is this item's turn")
//	}); err != nil {
//		log.Fatal(err)
//	}
package serialqueue
