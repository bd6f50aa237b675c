package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/osse101/PackOpener_Go/internal/logger"
)

// ErrPoolStopped is returned by Enqueue after Stop.
var ErrPoolStopped = errors.New("worker pool stopped")

// Job represents a task to be executed by a worker
type Job interface {
	Name() string
	Process(ctx context.Context) error
}

// Pool runs queued jobs on a fixed number of goroutines.
type Pool struct {
	workers  int
	jobQueue chan Job
	wg       sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	stopOnce sync.Once
}

// NewPool creates a new worker pool. Jobs run under ctx, which is cancelled on Stop.
func NewPool(ctx context.Context, workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if queueSize < 0 {
		queueSize = DefaultQueueSize
	}
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	return &Pool{
		workers:  workers,
		jobQueue: make(chan Job, queueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start starts the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobQueue:
			if err := job.Process(p.ctx); err != nil {
				logger.FromContext(p.ctx).Error(LogMsgWorkerJobFailed, LogFieldJob, job.Name(), LogFieldError, err)
			}
		case <-p.ctx.Done():
			return
		}
	}
}

// Enqueue blocks until the job is queued, ctx is done, or the pool stops.
func (p *Pool) Enqueue(ctx context.Context, job Job) error {
	select {
	case p.jobQueue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrPoolStopped
	}
}

// TryEnqueue queues the job without blocking and reports whether it was accepted.
func (p *Pool) TryEnqueue(job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false
	}
}

// Stop cancels running jobs and waits for the workers to exit or ctx to expire.
// Jobs still queued are dropped.
func (p *Pool) Stop(ctx context.Context) error {
	p.stopOnce.Do(p.cancel)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	log := logger.FromContext(ctx)
	select {
	case <-done:
		log.Info(LogMsgPoolStopped)
		return nil
	case <-ctx.Done():
		log.Warn(LogMsgPoolStopTimeout)
		return ctx.Err()
	}
}
