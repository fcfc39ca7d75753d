package taskforge

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// WorkQueueConfig configures a WorkQueue.
type WorkQueueConfig struct {
	// MaxPriority is the highest admissible priority level (levels run
	// 0..MaxPriority). Defaults to 0 (a plain FIFO queue).
	MaxPriority int
	// MaxParallel bounds concurrently executing work items.
	MaxParallel int
	// MaxAttempts clamps every task's retry budget; 0 means unbounded.
	MaxAttempts int
	Scope       ScopeFactory
}

// WorkQueue is a bounded-concurrency queue of self-contained, argument-free
// work: each enqueued item is a closure that needs nothing from the queue
// beyond a context.
type WorkQueue struct {
	manager     *Manager[struct{}, struct{}]
	processor   *Processor[struct{}, struct{}]
	worker      *Worker[struct{}, struct{}]
	maxAttempts int
	closed      atomic.Bool
}

// NewWorkQueue builds and starts a WorkQueue.
func NewWorkQueue(ctx context.Context, cfg WorkQueueConfig, log *slog.Logger) (*WorkQueue, error) {
	maxParallel := cfg.MaxParallel
	if maxParallel <= 0 {
		maxParallel = 1
	}
	mgr := NewManager[struct{}, struct{}](cfg.MaxPriority)
	proc := NewProcessor[struct{}, struct{}](NullSource[struct{}](maxParallel), log)
	w := NewWorker(mgr, proc, &WorkerConfig{Scope: cfg.Scope}, log)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return &WorkQueue{manager: mgr, processor: proc, worker: w, maxAttempts: cfg.MaxAttempts}, nil
}

// Enqueue admits a work item at the given priority with the given retry
// budget (attempts <= 0 defaults to 1, clamped to MaxAttempts if set).
func (q *WorkQueue) Enqueue(work func(ctx context.Context) error, attempts, priority int) (*Future[struct{}], error) {
	if q.closed.Load() {
		return nil, ErrQueueClosed
	}
	attempts = q.clampAttempts(attempts)
	task := NewTask[struct{}, struct{}](func(ctx context.Context, _ struct{}) (struct{}, error) {
		return struct{}{}, work(ctx)
	}, attempts)
	if err := q.manager.Enqueue(task, priority); err != nil {
		return nil, err
	}
	return task.Future(), nil
}

func (q *WorkQueue) clampAttempts(attempts int) int {
	if attempts <= 0 {
		attempts = 1
	}
	if q.maxAttempts > 0 && attempts > q.maxAttempts {
		attempts = q.maxAttempts
	}
	return attempts
}

// Stop gracefully stops the queue's worker, waiting up to timeout for
// in-flight work to finish.
func (q *WorkQueue) Stop(timeout time.Duration) error {
	q.closed.Store(true)
	return q.worker.Stop(timeout)
}
