package taskforge

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// AccessQueueConfig configures an AccessQueue[R].
type AccessQueueConfig struct {
	MaxPriority int
	MaxAttempts int
	Scope       ScopeFactory
}

// AccessQueue serializes access to a pool of resources of type R: each
// enqueued item receives exclusive use of one resource for the duration of
// its call.
type AccessQueue[R any] struct {
	manager     *Manager[R, struct{}]
	processor   *Processor[R, struct{}]
	worker      *Worker[R, struct{}]
	maxAttempts int
	closed      atomic.Bool
}

// NewStaticAccessQueue builds an AccessQueue over a fixed, pre-built set of
// resources (one concurrent user per resource).
func NewStaticAccessQueue[R any](ctx context.Context, cfg AccessQueueConfig, values []R, log *slog.Logger) (*AccessQueue[R], error) {
	return newAccessQueue(ctx, cfg, StaticSource(values), log)
}

// NewReusableAccessQueue builds an AccessQueue that lazily grows up to cap
// resources via factory, keeping each for the queue's lifetime once built.
func NewReusableAccessQueue[R any](ctx context.Context, cfg AccessQueueConfig, factory func(ctx context.Context) (R, error), cap int, log *slog.Logger) (*AccessQueue[R], error) {
	return newAccessQueue(ctx, cfg, ReusableSource(factory, cap), log)
}

// NewOneShotAccessQueue builds an AccessQueue that builds and discards a
// fresh resource for every single call.
func NewOneShotAccessQueue[R any](ctx context.Context, cfg AccessQueueConfig, factory func(ctx context.Context) (R, error), maxParallel int, log *slog.Logger) (*AccessQueue[R], error) {
	return newAccessQueue(ctx, cfg, OneShotSource(factory, maxParallel), log)
}

func newAccessQueue[R any](ctx context.Context, cfg AccessQueueConfig, source *Source[R], log *slog.Logger) (*AccessQueue[R], error) {
	mgr := NewManager[R, struct{}](cfg.MaxPriority)
	proc := NewProcessor[R, struct{}](source, log)
	w := NewWorker(mgr, proc, &WorkerConfig{Scope: cfg.Scope}, log)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return &AccessQueue[R]{manager: mgr, processor: proc, worker: w, maxAttempts: cfg.MaxAttempts}, nil
}

// Enqueue admits a call that will run against one resource from the pool.
func (q *AccessQueue[R]) Enqueue(work func(ctx context.Context, resource R) error, attempts, priority int) (*Future[struct{}], error) {
	if q.closed.Load() {
		return nil, ErrQueueClosed
	}
	attempts = q.clampAttempts(attempts)
	task := NewTask[R, struct{}](func(ctx context.Context, resource R) (struct{}, error) {
		return struct{}{}, work(ctx, resource)
	}, attempts)
	if err := q.manager.Enqueue(task, priority); err != nil {
		return nil, err
	}
	return task.Future(), nil
}

func (q *AccessQueue[R]) clampAttempts(attempts int) int {
	if attempts <= 0 {
		attempts = 1
	}
	if q.maxAttempts > 0 && attempts > q.maxAttempts {
		attempts = q.maxAttempts
	}
	return attempts
}

func (q *AccessQueue[R]) Stop(timeout time.Duration) error {
	q.closed.Store(true)
	return q.worker.Stop(timeout)
}
