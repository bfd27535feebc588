package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_RunsSubmittedJobs(t *testing.T) {
	ctx := context.Background()
	pool := NewWorkerPool(3)
	pool.Start(ctx)

	var ran int32
	for i := 0; i < 10; i++ {
		require.NoError(t, pool.Submit(ctx, func(context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		}))
	}
	pool.Stop()

	assert.Equal(t, int32(10), atomic.LoadInt32(&ran))
}

func TestWorkerPool_SubmitHonoursContext(t *testing.T) {
	pool := NewWorkerPool(1)
	// Not started: the buffer (2 slots) fills and the third submit must wait.
	for i := 0; i < 2; i++ {
		require.NoError(t, pool.Submit(context.Background(), func(context.Context) error { return nil }))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := pool.Submit(ctx, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
