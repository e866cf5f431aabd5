package serialqueue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueueStack_PushPopAndContains(t *testing.T) {
	require.Nil(t, currentStack())
	require.Nil(t, CurrentQueue())

	q1 := &Queue{}
	q2 := &Queue{}

	_, prev0 := pushCurrent(q1)
	require.False(t, prev0.Contains(q1))
	require.Equal(t, q1, CurrentQueue())

	stack, prev1 := pushCurrent(q2)
	require.True(t, prev1.Contains(q1))
	require.False(t, prev1.Contains(q2))
	require.Equal(t, q2, stack.Top())
	require.True(t, stack.Contains(q1))
	require.True(t, stack.Contains(q2))

	popCurrent()
	require.Equal(t, q1, CurrentQueue())

	popCurrent()
	require.Nil(t, currentStack())
}

func TestQueueStack_PopOnEmptyRegistryIsNoOp(t *testing.T) {
	require.NotPanics(t, popCurrent)
}
