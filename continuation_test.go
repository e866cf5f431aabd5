package serialqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestContinuationBridge_PostIsAsync(t *testing.T) {
	q, _ := newTestQueue(t)

	var bridge *ContinuationBridge
	got := make(chan struct{})
	_, err := q.SubmitAsync(func() {
		bridge = Continuation()
		close(got)
	})
	require.NoError(t, err)
	<-got
	require.NotNil(t, bridge)

	done := make(chan struct{})
	require.NoError(t, bridge.Post(func() {
		close(done)
	}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("bridge.Post never ran")
	}
}

func TestContinuationBridge_SendBlocksUntilComplete(t *testing.T) {
	q, _ := newTestQueue(t)

	var bridge *ContinuationBridge
	got := make(chan struct{})
	_, err := q.SubmitAsync(func() {
		bridge = Continuation()
		close(got)
	})
	require.NoError(t, err)
	<-got

	var ran bool
	require.NoError(t, bridge.Send(func() {
		ran = true
	}))
	require.True(t, ran)
}

func TestContinuationBridge_NilBridgeMethodsReturnErrDisposed(t *testing.T) {
	var bridge *ContinuationBridge
	require.ErrorIs(t, bridge.Post(func() {}), ErrDisposed)
	require.ErrorIs(t, bridge.Send(func() {}), ErrDisposed)
}

func TestContinuationBridge_OnlyLiveDuringDrain(t *testing.T) {
	q, _ := newTestQueue(t)
	require.Nil(t, Continuation())

	inside := make(chan *ContinuationBridge, 1)
	_, err := q.SubmitAsync(func() {
		inside <- Continuation()
	})
	require.NoError(t, err)

	select {
	case b := <-inside:
		require.NotNil(t, b)
	case <-time.After(time.Second):
		t.Fatal("never observed a ContinuationBridge during drain")
	}

	// After the work item returns, the drain goroutine's bridge is either
	// cleared or reassigned to whatever it runs next; it must never leak
	// into a goroutine that did not run on this queue.
	require.Nil(t, Continuation())
}
