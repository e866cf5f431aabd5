package serialqueue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueue_DrainOnlyRequestedOnceWhileScheduled(t *testing.T) {
	pool := &fakePool{}
	q := New(pool, DefaultFeatures, WithName(t.Name()))

	var order []int
	_, err := q.SubmitAsync(func() { order = append(order, 1) })
	require.NoError(t, err)
	require.Equal(t, 1, pool.pendingCount())

	// A second submission while the first drain is still only "scheduled"
	// (not yet run by the pool) must not ask the pool for a second drain.
	_, err = q.SubmitAsync(func() { order = append(order, 2) })
	require.NoError(t, err)
	require.Equal(t, 1, pool.pendingCount())

	pool.runPending()
	require.Equal(t, []int{1, 2}, order)

	// The queue is idle again now, so a fresh submission must request a new
	// drain.
	_, err = q.SubmitAsync(func() { order = append(order, 3) })
	require.NoError(t, err)
	require.Equal(t, 1, pool.pendingCount())

	pool.runPending()
	require.Equal(t, []int{1, 2, 3}, order)
}

func TestQueue_RequestDrainRollsBackStateOnPoolFailure(t *testing.T) {
	pool := &fakePool{closed: true}
	logger := &recordingLogger{}
	q := New(pool, DefaultFeatures, WithName(t.Name()), WithLogger(logger))

	_, err := q.SubmitAsync(func() {})
	require.NoError(t, err) // the pool's refusal is logged, not returned by SubmitAsync

	require.Equal(t, stateIdle, q.state)
	require.NotEmpty(t, logger.events)
	require.Equal(t, LogLevelError, logger.events[0].Level)
}
