package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_ProcessesSubmittedWork(t *testing.T) {
	var processed int64
	pool := NewPool(2, 10, func(_ context.Context, n int) error {
		atomic.AddInt64(&processed, int64(n))
		return nil
	})

	ctx := context.Background()
	require.NoError(t, pool.Start(ctx))

	for i := 1; i <= 5; i++ {
		require.NoError(t, pool.Submit(i))
	}

	require.NoError(t, pool.Stop(time.Second))
	assert.Equal(t, int64(15), atomic.LoadInt64(&processed))

	stats := pool.Stats()
	assert.Equal(t, int64(5), stats.Submitted)
	assert.Equal(t, int64(5), stats.Processed)
	assert.Equal(t, int64(0), stats.Failed)
}

func TestPool_SubmitBeforeStart(t *testing.T) {
	pool := NewPool(1, 1, func(_ context.Context, _ int) error { return nil })
	assert.ErrorIs(t, pool.Submit(1), ErrPoolNotStarted)
}

func TestPool_SubmitAfterStop(t *testing.T) {
	pool := NewPool(1, 1, func(_ context.Context, _ int) error { return nil })
	require.NoError(t, pool.Start(context.Background()))
	require.NoError(t, pool.Stop(time.Second))
	assert.ErrorIs(t, pool.Submit(1), ErrPoolStopped)
}

func TestPool_QueueFullDropsWork(t *testing.T) {
	block := make(chan struct{})
	pool := NewPool(1, 1, func(_ context.Context, _ int) error {
		<-block
		return nil
	})
	require.NoError(t, pool.Start(context.Background()))

	// First item occupies the worker, second fills the queue.
	require.NoError(t, pool.Submit(1))
	// Give the worker a moment to pick up the first item.
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, pool.Submit(2))

	err := pool.Submit(3)
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, int64(1), pool.Stats().Dropped)

	close(block)
	require.NoError(t, pool.Stop(time.Second))
}

func TestPool_FailedWorkCounted(t *testing.T) {
	pool := NewPool(1, 10, func(_ context.Context, n int) error {
		if n%2 == 0 {
			return errors.New("even numbers fail")
		}
		return nil
	})
	require.NoError(t, pool.Start(context.Background()))

	for i := 1; i <= 4; i++ {
		require.NoError(t, pool.Submit(i))
	}
	require.NoError(t, pool.Stop(time.Second))

	stats := pool.Stats()
	assert.Equal(t, int64(4), stats.Processed)
	assert.Equal(t, int64(2), stats.Failed)
}

func TestPool_DoubleStart(t *testing.T) {
	pool := NewPool(1, 1, func(_ context.Context, _ int) error { return nil })
	require.NoError(t, pool.Start(context.Background()))
	assert.ErrorIs(t, pool.Start(context.Background()), ErrPoolAlreadyStarted)
	require.NoError(t, pool.Stop(time.Second))
}

func TestPool_NilProcessorPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewPool[int](1, 1, nil)
	})
}

func TestPool_ContextCancellationStopsWorkers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	seen := 0
	pool := NewPool(1, 10, func(_ context.Context, _ int) error {
		mu.Lock()
		seen++
		mu.Unlock()
		return nil
	})
	require.NoError(t, pool.Start(ctx))
	require.NoError(t, pool.Submit(1))

	time.Sleep(20 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, 1, seen)
	mu.Unlock()
}

func TestPool_MetricsRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	pool := NewPool(1, 10, func(_ context.Context, _ int) error { return nil },
		WithMetrics[int](reg, "probe_pool"))
	require.NoError(t, pool.Start(context.Background()))
	require.NoError(t, pool.Submit(1))
	require.NoError(t, pool.Stop(time.Second))

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["probe_pool_submitted_total"])
	assert.True(t, names["probe_pool_processed_total"])
}
