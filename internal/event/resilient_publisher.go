package event

import (
	"context"
	"sync"
	"time"

	"github.com/osse101/PackOpener_Go/internal/logger"
)

// ResilientConfig configures the ResilientPublisher
type ResilientConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

// ResilientPublisher wraps a Bus so a failing subscriber never fails the publisher.
// Failed events are retried in the background with exponential backoff and
// written to the dead letter once retries are exhausted.
type ResilientPublisher struct {
	inner      Bus
	config     ResilientConfig
	deadLetter *DeadLetterWriter

	wg       sync.WaitGroup
	shutdown chan struct{}
	once     sync.Once
}

// NewResilientPublisher creates a new ResilientPublisher. deadLetter may be nil.
func NewResilientPublisher(inner Bus, config ResilientConfig, deadLetter *DeadLetterWriter) *ResilientPublisher {
	if config.MaxRetries <= 0 {
		config.MaxRetries = RetryMaxAttempts
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = RetryInitialDelay
	}
	return &ResilientPublisher{
		inner:      inner,
		config:     config,
		deadLetter: deadLetter,
		shutdown:   make(chan struct{}),
	}
}

// Publish delivers the event once synchronously. On failure it schedules
// background retries and returns nil.
func (p *ResilientPublisher) Publish(ctx context.Context, event Event) error {
	err := p.inner.Publish(ctx, event)
	if err == nil {
		return nil
	}

	logger.FromContext(ctx).Warn(LogMsgEventPublishFailed,
		LogFieldEventType, event.Type,
		LogFieldError, err)

	select {
	case <-p.shutdown:
		p.toDeadLetter(event, 1, err)
		return nil
	default:
	}

	p.wg.Add(1)
	go p.retryLoop(context.WithoutCancel(ctx), event, err)
	return nil
}

// Subscribe delegates to the inner bus
func (p *ResilientPublisher) Subscribe(eventType Type, handler Handler) {
	p.inner.Subscribe(eventType, handler)
}

// Shutdown stops scheduling retries and waits for in-flight retries to finish.
func (p *ResilientPublisher) Shutdown(ctx context.Context) error {
	p.once.Do(func() { close(p.shutdown) })

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *ResilientPublisher) retryLoop(ctx context.Context, event Event, lastErr error) {
	defer p.wg.Done()
	log := logger.FromContext(ctx)

	for attempt := 1; attempt <= p.config.MaxRetries; attempt++ {
		timer := time.NewTimer(CalculateRetryDelay(p.config.RetryDelay, attempt))
		select {
		case <-timer.C:
		case <-p.shutdown:
			timer.Stop()
			log.Warn(LogMsgEventDroppedShutdown, LogFieldEventType, event.Type)
			p.toDeadLetter(event, attempt, lastErr)
			return
		}

		if lastErr = p.inner.Publish(ctx, event); lastErr == nil {
			log.Info(LogMsgEventRetrySucceeded, LogFieldEventType, event.Type, LogFieldAttempt, attempt)
			return
		}
		log.Warn(LogMsgEventRetryFailed, LogFieldEventType, event.Type, LogFieldAttempt, attempt, LogFieldError, lastErr)
	}

	p.toDeadLetter(event, p.config.MaxRetries+1, lastErr)
}

func (p *ResilientPublisher) toDeadLetter(event Event, attempts int, lastErr error) {
	if p.deadLetter == nil {
		return
	}
	if err := p.deadLetter.Write(event, attempts, lastErr); err != nil {
		logger.FromContext(context.Background()).Error(LogMsgDeadLetterFailed, LogFieldEventType, event.Type, LogFieldError, err)
		return
	}
	logger.FromContext(context.Background()).Warn(LogMsgEventDeadLettered, LogFieldEventType, event.Type, LogFieldAttempt, attempts)
}
