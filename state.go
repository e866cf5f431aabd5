package serialqueue

// schedulerState is the Queue's scheduling state, always read and written
// under schedulerMu (see queue.go). Three states are kept distinct, rather
// than collapsed to "idle vs. busy", because Scheduled (a drain is owed to
// the pool but has not started dequeuing yet) and Processing (a drain is
// actively dequeuing) are observably different to SubmitSync's path
// decision, even though both currently route a sync caller through the same
// rendezvous mechanism.
type schedulerState int

const (
	// stateIdle means no drain is owed to the pool. The run queue was empty
	// the last time schedulerMu was released, except after the pool refused
	// a drain (see requestDrain): the state is then rolled back to Idle with
	// the refused items still queued.
	stateIdle schedulerState = iota
	// stateScheduled means a drain has been handed to the pool but has not
	// yet started dequeuing work items.
	stateScheduled
	// stateProcessing means a drain is actively dequeuing and running work
	// items.
	stateProcessing
)

// String returns a human-readable representation of the state.
func (s schedulerState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateScheduled:
		return "scheduled"
	case stateProcessing:
		return "processing"
	default:
		return "unknown"
	}
}
