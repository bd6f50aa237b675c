package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	executed atomic.Int32
	err      error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Process(context.Context) error {
	j.executed.Add(1)
	return j.err
}

type blockingJob struct {
	started chan struct{}
}

func (j *blockingJob) Name() string { return "blocking" }

func (j *blockingJob) Process(ctx context.Context) error {
	close(j.started)
	<-ctx.Done()
	return ctx.Err()
}

func TestPool_ProcessesJobs(t *testing.T) {
	pool := NewPool(context.Background(), 2, 10)
	pool.Start()

	job := &countingJob{}
	require.NoError(t, pool.Enqueue(context.Background(), job))
	require.NoError(t, pool.Enqueue(context.Background(), job))

	assert.Eventually(t, func() bool { return job.executed.Load() == 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, pool.Stop(context.Background()))
}

func TestPool_FailingJobDoesNotStopWorker(t *testing.T) {
	pool := NewPool(context.Background(), 1, 4)
	pool.Start()

	job := &countingJob{err: errors.New("boom")}
	for i := 0; i < 3; i++ {
		require.NoError(t, pool.Enqueue(context.Background(), job))
	}

	assert.Eventually(t, func() bool { return job.executed.Load() == 3 }, time.Second, 5*time.Millisecond)
	require.NoError(t, pool.Stop(context.Background()))
}

func TestPool_StopCancelsRunningJobs(t *testing.T) {
	pool := NewPool(context.Background(), 1, 1)
	pool.Start()

	job := &blockingJob{started: make(chan struct{})}
	require.NoError(t, pool.Enqueue(context.Background(), job))
	<-job.started

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, pool.Stop(ctx))
}

func TestPool_EnqueueAfterStop(t *testing.T) {
	pool := NewPool(context.Background(), 1, 0)
	pool.Start()
	require.NoError(t, pool.Stop(context.Background()))

	err := pool.Enqueue(context.Background(), &countingJob{})
	assert.ErrorIs(t, err, ErrPoolStopped)
	assert.False(t, pool.TryEnqueue(&countingJob{}))
}

func TestPool_TryEnqueueFullQueue(t *testing.T) {
	// Not started, so nothing drains the queue.
	pool := NewPool(context.Background(), 1, 1)
	defer func() { _ = pool.Stop(context.Background()) }()

	assert.True(t, pool.TryEnqueue(&countingJob{}))
	assert.False(t, pool.TryEnqueue(&countingJob{}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, pool.Enqueue(ctx, &countingJob{}), context.DeadlineExceeded)
}

func TestPeriodic_RunsUntilStopped(t *testing.T) {
	pool := NewPool(context.Background(), 1, 1)
	pool.Start()
	defer func() { _ = pool.Stop(context.Background()) }()

	job := &countingJob{}
	periodic := NewPeriodic(pool, job, 5*time.Millisecond)
	periodic.Start(context.Background())

	assert.Eventually(t, func() bool { return job.executed.Load() >= 3 }, time.Second, 5*time.Millisecond)
	periodic.Stop()

	after := job.executed.Load()
	time.Sleep(30 * time.Millisecond)
	assert.LessOrEqual(t, job.executed.Load(), after+1)
}

func TestPeriodic_StopWithoutStart(t *testing.T) {
	pool := NewPool(context.Background(), 1, 1)
	periodic := NewPeriodic(pool, &countingJob{}, time.Hour)

	done := make(chan struct{})
	go func() {
		periodic.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on an unstarted schedule")
	}
}
