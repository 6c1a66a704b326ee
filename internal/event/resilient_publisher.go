package event

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/geoclaim/geoclaim/internal/logger"
)

// retryEntry is one event waiting in the retry queue
type retryEntry struct {
	event   Event
	attempt int
	lastErr error
}

// ResilientPublisher wraps an event Bus with bounded retry and a
// dead-letter file. Callers never block on a failing bus: a failed
// publish is queued for background retry and the call returns nil.
type ResilientPublisher struct {
	bus        Bus
	retryQueue chan retryEntry
	maxRetries int
	retryDelay time.Duration
	deadLetter *DeadLetterWriter
	shutdown   chan struct{}
	wg         sync.WaitGroup
}

// NewResilientPublisher creates a publisher with a running retry worker
func NewResilientPublisher(bus Bus, maxRetries int, retryDelay time.Duration, deadLetterPath string) (*ResilientPublisher, error) {
	dl, err := NewDeadLetterWriter(deadLetterPath)
	if err != nil {
		return nil, err
	}

	p := &ResilientPublisher{
		bus:        bus,
		retryQueue: make(chan retryEntry, RetryQueueBufferSize),
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		deadLetter: dl,
		shutdown:   make(chan struct{}),
	}

	p.wg.Add(1)
	go p.retryWorker()
	return p, nil
}

// Publish implements Bus. Failures are retried in the background, so
// the returned error is always nil once the event is accepted.
func (p *ResilientPublisher) Publish(ctx context.Context, event Event) error {
	p.PublishWithRetry(ctx, event)
	return nil
}

// PublishWithRetry attempts one synchronous publish and hands failures
// to the retry worker. A full retry queue dead-letters immediately
// rather than blocking the caller.
func (p *ResilientPublisher) PublishWithRetry(ctx context.Context, event Event) {
	err := p.bus.Publish(ctx, event)
	if err == nil {
		return
	}

	log := logger.FromContext(ctx)
	log.Warn(LogMsgEventPublishFailed, "event_type", event.Type, "error", err)

	select {
	case p.retryQueue <- retryEntry{event: event, attempt: 1, lastErr: err}:
	default:
		log.Error(LogMsgRetryQueueFull, "event_type", event.Type)
		if dlErr := p.deadLetter.Write(event, 1, err); dlErr != nil {
			log.Error(LogMsgDeadLetterWriteFailed, "error", dlErr)
		}
	}
}

// Subscribe delegates to the inner bus
func (p *ResilientPublisher) Subscribe(eventType Type, handler Handler) {
	p.bus.Subscribe(eventType, handler)
}

func (p *ResilientPublisher) retryWorker() {
	defer p.wg.Done()

	ctx := context.Background()
	log := logger.FromContext(ctx)

	for {
		select {
		case <-p.shutdown:
			p.drainQueue(ctx)
			return
		case entry := <-p.retryQueue:
			p.retryEntry(ctx, log, entry)
		}
	}
}

// retryEntry replays one event with exponential backoff until it
// succeeds or exhausts the retry budget.
func (p *ResilientPublisher) retryEntry(ctx context.Context, log *slog.Logger, entry retryEntry) {
	for attempt := entry.attempt; attempt <= p.maxRetries; attempt++ {
		delay := CalculateRetryDelay(p.retryDelay, attempt)
		select {
		case <-p.shutdown:
			// Final chance before shutdown, without the backoff wait
			if err := p.bus.Publish(ctx, entry.event); err != nil {
				if dlErr := p.deadLetter.Write(entry.event, attempt, err); dlErr != nil {
					log.Error(LogMsgDeadLetterWriteFailedS, "error", dlErr)
				}
			}
			return
		case <-time.After(delay):
		}

		err := p.bus.Publish(ctx, entry.event)
		if err == nil {
			log.Info(LogMsgEventRetrySucceeded, "event_type", entry.event.Type, "attempt", attempt)
			return
		}
		entry.lastErr = err
		log.Warn(LogMsgEventRetryFailed, "event_type", entry.event.Type, "attempt", attempt, "error", err)
	}

	log.Error(LogMsgEventRetryExhausted, "event_type", entry.event.Type, "attempts", p.maxRetries)
	if dlErr := p.deadLetter.Write(entry.event, p.maxRetries, entry.lastErr); dlErr != nil {
		log.Error(LogMsgDeadLetterWriteFailed, "error", dlErr)
	}
}

// drainQueue gives every queued event one last publish attempt, then
// dead-letters the failures.
func (p *ResilientPublisher) drainQueue(ctx context.Context) {
	log := logger.FromContext(ctx)
	drained := 0
	for {
		select {
		case entry := <-p.retryQueue:
			drained++
			if err := p.bus.Publish(ctx, entry.event); err != nil {
				if dlErr := p.deadLetter.Write(entry.event, entry.attempt, err); dlErr != nil {
					log.Error(LogMsgDeadLetterWriteFailedS, "error", dlErr)
				}
			}
		default:
			if drained > 0 {
				log.Info(LogMsgQueueDrainedShutdown, "count", drained)
			}
			return
		}
	}
}

// Shutdown stops the retry worker, draining pending events first.
// Returns the context error if the drain does not finish in time.
func (p *ResilientPublisher) Shutdown(ctx context.Context) error {
	close(p.shutdown)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return p.deadLetter.Close()
	case <-ctx.Done():
		logger.FromContext(ctx).Error(LogMsgShutdownTimeout)
		return ctx.Err()
	}
}
