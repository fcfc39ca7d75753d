package taskforge

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskforge/taskforge/internal"
)

// ScopeFactory derives a per-execution request-scoped context from the
// worker's running context. The default simply forwards a cancellable
// child context; callers needing richer request scoping (a deadline, a
// value bag) supply their own.
type ScopeFactory interface {
	NewScope(ctx context.Context) (context.Context, context.CancelFunc)
}

type defaultScopeFactory struct{}

func (defaultScopeFactory) NewScope(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithCancel(ctx)
}

// DefaultScopeFactory forwards the worker's context unchanged (save for a
// cancel func callers should always defer).
var DefaultScopeFactory ScopeFactory = defaultScopeFactory{}

type taskJob[A, R any] struct {
	task    *Task[A, R]
	meta    Metadata
	manager *Manager[A, R]
	scope   ScopeFactory
}

// Processor drains a Manager and runs tasks against arguments supplied by a
// Source, under exactly Source.Capacity() concurrent workers. It owns no
// state of its own beyond the pool; build a new one per Worker.
type Processor[A, R any] struct {
	source *Source[A]
	pool   *internal.WorkerPool[taskJob[A, R]]
	log    *slog.Logger
}

// NewProcessor builds a Processor bound to source, with one worker goroutine
// and one argument per source slot.
func NewProcessor[A, R any](source *Source[A], log *slog.Logger) *Processor[A, R] {
	return &Processor[A, R]{
		source: source,
		pool:   internal.NewWorkerPool[taskJob[A, R]](source.Capacity(), source.Capacity(), log),
		log:    log,
	}
}

// Start launches the processor's worker pool. It must be called before the
// first ProcessPending.
func (p *Processor[A, R]) Start(ctx context.Context) {
	p.pool.StartIndexed(ctx, func(slot int) (internal.WorkHandler[taskJob[A, R]], func()) {
		var held A
		var heldOK bool
		handler := func(ctx context.Context, job taskJob[A, R]) {
			held, heldOK = p.run(ctx, job, slot, held, heldOK)
		}
		cleanup := func() {
			if heldOK {
				p.source.dispose(context.Background(), held)
			}
		}
		return handler, cleanup
	})
}

func (p *Processor[A, R]) run(ctx context.Context, job taskJob[A, R], slot int, prev A, prevOK bool) (A, bool) {
	arg, err := p.source.acquire(ctx, slot, prev, prevOK)
	if err != nil {
		p.log.Error("argument acquisition failed", "err", err)
		if job.task.FailAttempt(err) {
			job.manager.RevertTask(job.task, job.meta)
		}
		return prev, false
	}

	if err := activateIfNeeded(ctx, arg); err != nil {
		p.log.Error("argument activation failed", "err", err)
		if job.task.FailAttempt(err) {
			job.manager.RevertTask(job.task, job.meta)
		}
		p.source.dispose(ctx, arg)
		return prev, false
	}

	scopeCtx, cancel := job.scope.NewScope(ctx)
	revert := job.task.Execute(scopeCtx, arg)
	cancel()

	if revert {
		job.manager.RevertTask(job.task, job.meta)
	}

	// Not gated on manager.HasTask: the next tasks may already have been
	// popped into the pool's buffer while the manager reports empty.
	if d := throttleDelay(arg); d > 0 {
		sleepCtx(ctx, d)
	}

	if p.source.reusePerTask {
		p.source.dispose(ctx, arg)
		return prev, false
	}
	return arg, true
}

// ProcessPending drains mgr until it reports no more tasks or the
// processor's pool has been stopped, dispatching each task into a free
// worker slot.
func (p *Processor[A, R]) ProcessPending(ctx context.Context, mgr *Manager[A, R], scope ScopeFactory) {
	for mgr.HasTask() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		task, meta, ok := mgr.GetTask()
		if !ok {
			continue
		}
		if !p.pool.Push(taskJob[A, R]{task: task, meta: meta, manager: mgr, scope: scope}) {
			return
		}
	}
}

// Stop drains and stops the processor's worker pool, disposing of any
// still-held pooled arguments.
func (p *Processor[A, R]) Stop() internal.DoneChan {
	return p.pool.Stop()
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
