package taskforge

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskforge/taskforge/internal"
)

// dispatchEpsilon is the small catch-up window used when snapshotting due
// wrappers: occurrences due within this window of "now" are dispatched in
// the same round rather than waiting for the next wakeup.
const dispatchEpsilon = 25 * time.Millisecond

// SchedulerWorkerConfig configures a SchedulerWorker.
type SchedulerWorkerConfig struct {
	// Concurrency bounds how many due occurrences are fired in parallel
	// within a single dispatch round. Defaults to 1 (sequential) if <= 0.
	Concurrency int
	Scope       ScopeFactory
	// OnOutcome, if set, is called after every Fire with the task's ID and
	// whether it is still live. This package records no outcomes itself;
	// the callback is the hook for doing so (to the history ledger, say)
	// without this package depending on it.
	OnOutcome func(id string, stillLive bool)
}

// SchedulerWorker drives a SchedulerManager: sleep until the next due
// occurrence (or wake early on a new admission), dispatch every wrapper due
// within a small catch-up window, repeat.
type SchedulerWorker[R any] struct {
	lcBase

	manager   *SchedulerManager[R]
	scope     ScopeFactory
	log       *slog.Logger
	onOutcome func(id string, stillLive bool)

	pool   *internal.WorkerPool[*ScheduledTask[R]]
	cancel context.CancelFunc
	done   internal.DoneChan
}

func NewSchedulerWorker[R any](manager *SchedulerManager[R], cfg *SchedulerWorkerConfig, log *slog.Logger) *SchedulerWorker[R] {
	concurrency := 1
	scope := DefaultScopeFactory
	var onOutcome func(id string, stillLive bool)
	if cfg != nil {
		if cfg.Concurrency > 0 {
			concurrency = cfg.Concurrency
		}
		if cfg.Scope != nil {
			scope = cfg.Scope
		}
		onOutcome = cfg.OnOutcome
	}
	return &SchedulerWorker[R]{
		manager:   manager,
		scope:     scope,
		log:       log,
		onOutcome: onOutcome,
		pool:      internal.NewWorkerPool[*ScheduledTask[R]](concurrency, concurrency, log),
	}
}

func (w *SchedulerWorker[R]) Start(ctx context.Context) error {
	if err := w.tryStart(); err != nil {
		return err
	}
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(internal.DoneChan)
	w.pool.Start(runCtx, w.fire)
	go w.run(runCtx)
	return nil
}

func (w *SchedulerWorker[R]) run(ctx context.Context) {
	defer close(w.done)
	for {
		next, ok := w.manager.NextTime()
		if !ok {
			if err := w.manager.WaitForNewTask(ctx); err != nil {
				return
			}
			continue
		}
		wait := time.Until(next)
		if wait < 0 {
			wait = 0
		}
		w.manager.waitUntil(ctx, wait)
		if ctx.Err() != nil {
			return
		}
		w.safeDispatch(ctx)
	}
}

func (w *SchedulerWorker[R]) safeDispatch(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("scheduler dispatch panic recovered", "err", r)
		}
	}()
	due := w.manager.popDue(time.Now().Add(dispatchEpsilon))
	for _, task := range due {
		if !w.pool.Push(task) {
			return
		}
	}
}

func (w *SchedulerWorker[R]) fire(ctx context.Context, task *ScheduledTask[R]) {
	scopeCtx, cancel := w.scope.NewScope(ctx)
	stillLive := task.Fire(scopeCtx)
	cancel()
	if stillLive {
		w.manager.Revert(task)
	}
	if w.onOutcome != nil {
		w.onOutcome(task.ID.String(), stillLive)
	}
}

func (w *SchedulerWorker[R]) doStop() internal.DoneChan {
	w.cancel()
	return internal.Combine(w.done, w.pool.Stop())
}

func (w *SchedulerWorker[R]) Stop(timeout time.Duration) error {
	return w.tryStop(timeout, w.doStop)
}
