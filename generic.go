package serialqueue

// SubmitSyncValue is a convenience wrapper around Queue.SubmitSync for work
// that produces a value. It runs fn on q following exactly the same
// scheduling rules as SubmitSync and returns whatever fn returned once it
// completes.
func SubmitSyncValue[T any](q *Queue, fn func() T) (T, error) {
	var result T
	err := q.SubmitSync(func() {
		result = fn()
	})
	return result, err
}
