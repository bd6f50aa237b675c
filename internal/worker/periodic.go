package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/osse101/PackOpener_Go/internal/logger"
)

// Periodic feeds a job into a pool on a fixed interval.
type Periodic struct {
	pool     *Pool
	job      Job
	interval time.Duration

	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
	started atomic.Bool
}

// NewPeriodic creates a schedule; call Start to begin ticking.
func NewPeriodic(pool *Pool, job Job, interval time.Duration) *Periodic {
	return &Periodic{
		pool:     pool,
		job:      job,
		interval: max(interval, minInterval),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the job once immediately, then every interval.
func (p *Periodic) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	logger.FromContext(ctx).Info(LogMsgPeriodicScheduled, LogFieldJob, p.job.Name(), LogFieldInterval, p.interval)

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.submit(ctx)
		for {
			select {
			case <-ticker.C:
				p.submit(ctx)
			case <-p.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (p *Periodic) submit(ctx context.Context) {
	if !p.pool.TryEnqueue(p.job) {
		logger.FromContext(ctx).Debug(LogMsgPeriodicSkipped, LogFieldJob, p.job.Name())
	}
}

// Stop halts the schedule and waits for the ticking goroutine to exit.
func (p *Periodic) Stop() {
	p.once.Do(func() { close(p.stop) })
	if p.started.Load() {
		<-p.done
	}
}
