package taskforge

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskforge/taskforge/internal"
)

// WorkerConfig configures a Worker's event loop.
type WorkerConfig struct {
	// Scope builds the per-execution request-scoped context. Defaults to
	// DefaultScopeFactory when nil.
	Scope ScopeFactory
}

// Worker is the event loop tying a Manager to a Processor: wait for work,
// drain it through the processor, repeat until stopped.
type Worker[A, R any] struct {
	lcBase

	manager   *Manager[A, R]
	processor *Processor[A, R]
	scope     ScopeFactory
	log       *slog.Logger

	cancel context.CancelFunc
	done   internal.DoneChan
}

// NewWorker builds a Worker over manager and processor.
func NewWorker[A, R any](manager *Manager[A, R], processor *Processor[A, R], cfg *WorkerConfig, log *slog.Logger) *Worker[A, R] {
	scope := DefaultScopeFactory
	if cfg != nil && cfg.Scope != nil {
		scope = cfg.Scope
	}
	return &Worker[A, R]{
		manager:   manager,
		processor: processor,
		scope:     scope,
		log:       log,
	}
}

// Start starts the processor and the worker's event loop.
func (w *Worker[A, R]) Start(ctx context.Context) error {
	if err := w.tryStart(); err != nil {
		return err
	}
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(internal.DoneChan)
	w.processor.Start(runCtx)
	go w.run(runCtx)
	return nil
}

func (w *Worker[A, R]) run(ctx context.Context) {
	defer close(w.done)
	for {
		if err := w.manager.WaitForTask(ctx); err != nil {
			return
		}
		w.safeDrain(ctx)
	}
}

func (w *Worker[A, R]) safeDrain(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("worker drain panic recovered", "err", r)
		}
	}()
	w.processor.ProcessPending(ctx, w.manager, w.scope)
}

func (w *Worker[A, R]) doStop() internal.DoneChan {
	w.cancel()
	return internal.Combine(w.done, w.processor.Stop())
}

// Stop signals the event loop and processor to stop, waiting up to timeout
// for in-flight tasks to finish.
func (w *Worker[A, R]) Stop(timeout time.Duration) error {
	return w.tryStop(timeout, w.doStop)
}
