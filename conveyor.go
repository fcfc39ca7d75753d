package taskforge

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Machine is the per-call processing function of a Conveyor: it runs
// argument (from the conveyor's resource pool) against input to produce a
// result.
type Machine[A, D, T any] func(ctx context.Context, argument A, input D) (T, error)

// ConveyorConfig configures a Conveyor.
type ConveyorConfig struct {
	MaxPriority int
	MaxAttempts int
	Scope       ScopeFactory
}

// Conveyor is a data-processing pipeline: ProcessData closes over its
// input and dispatches a Task against the conveyor's Machine and argument
// pool, exactly like AccessQueue but with per-call input bound at the call
// site rather than baked into the work closure by the caller.
type Conveyor[A, D, T any] struct {
	manager     *Manager[A, T]
	processor   *Processor[A, T]
	worker      *Worker[A, T]
	machine     Machine[A, D, T]
	maxAttempts int
	closed      atomic.Bool
}

func newConveyor[A, D, T any](ctx context.Context, cfg ConveyorConfig, source *Source[A], machine Machine[A, D, T], log *slog.Logger) (*Conveyor[A, D, T], error) {
	mgr := NewManager[A, T](cfg.MaxPriority)
	proc := NewProcessor[A, T](source, log)
	w := NewWorker(mgr, proc, &WorkerConfig{Scope: cfg.Scope}, log)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return &Conveyor[A, D, T]{manager: mgr, processor: proc, worker: w, machine: machine, maxAttempts: cfg.MaxAttempts}, nil
}

// NewStaticConveyor builds a Conveyor over a fixed set of machine
// arguments.
func NewStaticConveyor[A, D, T any](ctx context.Context, cfg ConveyorConfig, values []A, machine Machine[A, D, T], log *slog.Logger) (*Conveyor[A, D, T], error) {
	return newConveyor(ctx, cfg, StaticSource(values), machine, log)
}

// NewReusableConveyor builds a Conveyor that lazily grows up to cap machine
// arguments via factory.
func NewReusableConveyor[A, D, T any](ctx context.Context, cfg ConveyorConfig, factory func(ctx context.Context) (A, error), cap int, machine Machine[A, D, T], log *slog.Logger) (*Conveyor[A, D, T], error) {
	return newConveyor(ctx, cfg, ReusableSource(factory, cap), machine, log)
}

// NewOneShotConveyor builds a Conveyor that builds and discards a fresh
// machine argument for every call.
func NewOneShotConveyor[A, D, T any](ctx context.Context, cfg ConveyorConfig, factory func(ctx context.Context) (A, error), maxParallel int, machine Machine[A, D, T], log *slog.Logger) (*Conveyor[A, D, T], error) {
	return newConveyor(ctx, cfg, OneShotSource(factory, maxParallel), machine, log)
}

// ProcessData enqueues input for processing by the conveyor's Machine
// against a pooled argument, returning a Future for the eventual result.
func (c *Conveyor[A, D, T]) ProcessData(input D, attempts, priority int) (*Future[T], error) {
	if c.closed.Load() {
		return nil, ErrQueueClosed
	}
	attempts = c.clampAttempts(attempts)
	machine := c.machine
	task := NewTask[A, T](func(ctx context.Context, argument A) (T, error) {
		return machine(ctx, argument, input)
	}, attempts)
	if err := c.manager.Enqueue(task, priority); err != nil {
		return nil, err
	}
	return task.Future(), nil
}

func (c *Conveyor[A, D, T]) clampAttempts(attempts int) int {
	if attempts <= 0 {
		attempts = 1
	}
	if c.maxAttempts > 0 && attempts > c.maxAttempts {
		attempts = c.maxAttempts
	}
	return attempts
}

func (c *Conveyor[A, D, T]) Stop(timeout time.Duration) error {
	c.closed.Store(true)
	return c.worker.Stop(timeout)
}
