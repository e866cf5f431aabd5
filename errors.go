package serialqueue

import (
	"errors"
	"fmt"
)

// Standard errors returned by Queue submission methods.
var (
	// ErrDisposed is returned by any submission method called on a queue
	// that has been disposed.
	ErrDisposed = errors.New("serialqueue: queue is disposed")

	// ErrWrongQueue is returned by Queue.VerifyOnQueue when the calling
	// goroutine is not currently executing on behalf of that queue.
	ErrWrongQueue = errors.New("serialqueue: not executing on this queue")
)

// PanicError wraps a panic value recovered from an asynchronous or delayed
// work item before it is forwarded to the unhandled-error sink and the
// logger. It is never produced for SubmitSync, whose panics propagate to the
// caller verbatim. RunDetached also returns one, with Queue set to
// "(detached)", when its detached function panics.
type PanicError struct {
	// Queue is the name of the queue the panicking work item belonged to,
	// if one was configured with WithName, or "(detached)" for a panic in
	// a RunDetached function.
	Queue string
	// Value is the recovered panic value.
	Value any
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	if e.Queue == "" {
		return fmt.Sprintf("serialqueue: work item panicked: %v", e.Value)
	}
	return fmt.Sprintf("serialqueue: work item panicked on queue %q: %v", e.Queue, e.Value)
}

// Unwrap returns the underlying error if the panic value is itself an error,
// enabling errors.Is and errors.As to reach it through the PanicError.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
