package serialqueue

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCancelToken_DisposeRunsCleanupExactlyOnce(t *testing.T) {
	var calls int32
	tok := newCancelToken(func() {
		atomic.AddInt32(&calls, 1)
	})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok.Dispose()
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestCancelToken_NilReceiverIsNoOp(t *testing.T) {
	var tok *CancelToken
	require.NotPanics(t, func() {
		tok.Dispose()
	})
}
