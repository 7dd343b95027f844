// Package jobs runs typed in-memory work queues on background workers.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Handler delivers one queued item. A non-nil error schedules a retry
// until the attempt budget runs out.
type Handler[T any] func(context.Context, T) error

// Config tunes worker pool behaviour for one queue.
type Config[T any] struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	// Describe renders an item for log entries, e.g. the recipient of an
	// outbound email. Optional.
	Describe func(T) string
	Logger   *zap.Logger
}

type delivery[T any] struct {
	item    T
	attempt int
}

// Queue dispatches items of one payload type to a pool of workers.
type Queue[T any] struct {
	name    string
	handler Handler[T]

	workers    int
	maxRetries int
	retryDelay time.Duration
	describe   func(T) string
	logger     *zap.Logger

	deliveries chan delivery[T]
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.Mutex
	started    bool
}

// New builds a queue around the handler.
func New[T any](name string, handler Handler[T], cfg Config[T]) *Queue[T] {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Describe == nil {
		cfg.Describe = func(T) string { return "" }
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue[T]{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		describe:   cfg.Describe,
		logger:     cfg.Logger,
		deliveries: make(chan delivery[T], cfg.BufferSize),
	}
}

// Start begins worker consumption. Safe to call once.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	q.logger.Sugar().Infow("queue started", "queue", q.name, "workers", q.workers)
}

// Stop cancels workers and waits for them to exit.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Sugar().Infow("queue stopped", "queue", q.name)
}

// Enqueue hands an item to the workers.
func (q *Queue[T]) Enqueue(item T) error {
	return q.enqueue(delivery[T]{item: item})
}

func (q *Queue[T]) enqueue(d delivery[T]) error {
	q.mu.Lock()
	ctx := q.ctx
	started := q.started
	q.mu.Unlock()

	if !started {
		return fmt.Errorf("queue %s not started", q.name)
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
	case q.deliveries <- d:
		return nil
	}
}

func (q *Queue[T]) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case d := <-q.deliveries:
			if err := q.handler(q.ctx, d.item); err != nil {
				q.handleFailure(d, err)
			}
		}
	}
}

func (q *Queue[T]) handleFailure(d delivery[T], err error) {
	d.attempt++
	if d.attempt > q.maxRetries {
		q.logger.Sugar().Errorw("delivery exceeded retries", "queue", q.name, "item", q.describe(d.item), "error", err)
		return
	}
	q.logger.Sugar().Warnw("delivery failed, retrying", "queue", q.name, "item", q.describe(d.item), "attempt", d.attempt, "error", err)

	go func(d delivery[T]) {
		timer := time.NewTimer(q.retryDelay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
			return
		case <-timer.C:
			if err := q.enqueue(d); err != nil {
				q.logger.Sugar().Errorw("failed to requeue delivery", "queue", q.name, "item", q.describe(d.item), "error", err)
			}
		}
	}(d)
}
