package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_RejectsZeroWorkers(t *testing.T) {
	p, err := New(zap.NewNop(), 0)
	require.ErrorIs(t, err, ErrInvalidSize)
	assert.Nil(t, p)
}

func TestPool_RunsAllJobs(t *testing.T) {
	p, err := New(zap.NewNop(), 3)
	require.NoError(t, err)

	var n atomic.Int32
	for i := 0; i < 50; i++ {
		require.NoError(t, p.Submit(context.Background(), func() { n.Add(1) }))
	}
	p.Shutdown()

	assert.EqualValues(t, 50, n.Load())
}

func TestPool_RunsJobsConcurrently(t *testing.T) {
	const workers = 4
	p, err := New(zap.NewNop(), workers)
	require.NoError(t, err)
	defer p.Shutdown()

	// every job blocks until all of them are running at once
	var started sync.WaitGroup
	started.Add(workers)
	release := make(chan struct{})
	for i := 0; i < workers; i++ {
		require.NoError(t, p.Submit(context.Background(), func() {
			started.Done()
			<-release
		}))
	}

	all := make(chan struct{})
	go func() { started.Wait(); close(all) }()
	select {
	case <-all:
	case <-time.After(2 * time.Second):
		t.Fatal("jobs did not run concurrently")
	}
	close(release)
}

func TestPool_PanicDoesNotKillWorker(t *testing.T) {
	var panics atomic.Int32
	p, err := New(zap.NewNop(), 1, WithPanicHook(func(any) { panics.Add(1) }))
	require.NoError(t, err)

	require.NoError(t, p.Submit(context.Background(), func() { panic("boom") }))

	ran := make(chan struct{})
	require.NoError(t, p.Submit(context.Background(), func() { close(ran) }))

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("single worker stopped serving after a panic")
	}
	p.Shutdown()
	assert.EqualValues(t, 1, panics.Load())
}

func TestPool_ShutdownDrainsQueueAndWaits(t *testing.T) {
	p, err := New(zap.NewNop(), 1, WithQueueSize(10))
	require.NoError(t, err)

	var done atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Submit(context.Background(), func() {
			time.Sleep(10 * time.Millisecond)
			done.Add(1)
		}))
	}
	p.Shutdown()

	assert.EqualValues(t, 5, done.Load(), "queued jobs must finish before Shutdown returns")
	assert.ErrorIs(t, p.Submit(context.Background(), func() {}), ErrClosed)
	assert.ErrorIs(t, p.TrySubmit(func() {}), ErrClosed)

	// second call is a no-op
	p.Shutdown()
}

func TestPool_BoundedQueueBackpressure(t *testing.T) {
	p, err := New(zap.NewNop(), 1, WithQueueSize(1))
	require.NoError(t, err)

	release := make(chan struct{})
	running := make(chan struct{})
	require.NoError(t, p.Submit(context.Background(), func() {
		close(running)
		<-release
	}))
	<-running

	// worker busy, one slot free
	require.NoError(t, p.TrySubmit(func() {}))
	assert.Equal(t, 1, p.QueueLen())

	// saturated
	assert.ErrorIs(t, p.TrySubmit(func() {}), ErrQueueFull)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Submit(ctx, func() {}), context.DeadlineExceeded)

	close(release)
	p.Shutdown()
	assert.Equal(t, 0, p.QueueLen())
}

func TestPool_SubmitWithEndedContextNeverQueues(t *testing.T) {
	p, err := New(zap.NewNop(), 1, WithQueueSize(16))
	require.NoError(t, err)
	defer p.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Int32
	for i := 0; i < 200; i++ {
		assert.ErrorIs(t, p.Submit(ctx, func() { ran.Add(1) }), context.Canceled)
	}
	p.Shutdown()
	assert.Zero(t, ran.Load(), "jobs submitted with an ended context must not run")
}
