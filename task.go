package taskforge

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Work is the user function a Task executes, given the argument the
// processor acquired for it.
type Work[A, R any] func(ctx context.Context, argument A) (R, error)

// Activatable is an optional capability an argument type may implement to
// participate in lazy connect/disconnect around first use and retirement
// from a pool. Static and reusable arguments are activated before their
// first task and deactivated when the processor stops or the argument is
// discarded after a failed activation; they are not deactivated when the
// manager runs out of tasks.
type Activatable interface {
	IsActive() bool
	Activate(ctx context.Context) error
	Deactivate(ctx context.Context) error
}

// Throttled is an optional capability an argument type may implement to
// enforce a minimum gap between consecutive uses of the same argument
// instance (a rate-limited external API client, say).
type Throttled interface {
	ThrottleDelay() time.Duration
}

// Task is a single unit of work bound to a Work function, with a bounded
// retry budget and a one-shot Future for its eventual result. Tasks are
// created by the service layer (WorkQueue, AccessQueue, Conveyor) and
// handed to a Manager; they are not constructed directly by most callers.
type Task[A, R any] struct {
	ID       uuid.UUID
	Metadata map[string]any

	work        Work[A, R]
	inner       context.Context
	cancelInner context.CancelFunc
	attempts    int32
	createdAt   time.Time
	future      *Future[R]
}

// NewTask builds a Task around work with the given retry budget. attempts
// must be at least 1; it is the number of total Execute attempts allowed,
// not the number of retries.
func NewTask[A, R any](work Work[A, R], attempts int) *Task[A, R] {
	if attempts < 1 {
		attempts = 1
	}
	inner, cancel := context.WithCancel(context.Background())
	return &Task[A, R]{
		ID:          uuid.New(),
		work:        work,
		inner:       inner,
		cancelInner: cancel,
		attempts:    int32(attempts),
		createdAt:   time.Now(),
		future:      newFuture[R](),
	}
}

// Future returns the promise that resolves when this task reaches a
// terminal outcome (completed, abandoned after retry exhaustion, or
// cancelled).
func (t *Task[A, R]) Future() *Future[R] {
	return t.future
}

// Cancel fires the task's own (inner) cancellation token. A task already
// queued is still dispatched once more so its cancellation can be
// observed and its Future rejected; it is not spliced out of the queue.
func (t *Task[A, R]) Cancel() {
	t.cancelInner()
}

// Execute runs the task's Work against the combined outer/inner context and
// classifies the result. It returns true when the task must be reverted
// (re-queued) by the caller, false when it reached a terminal outcome and
// its Future has been resolved.
func (t *Task[A, R]) Execute(outer context.Context, argument A) bool {
	combined, cleanup := combineContexts(outer, t.inner)
	defer cleanup()

	if combined.Err() != nil {
		switch classify(t.inner, outer, combined.Err()) {
		case outcomeUserCancel:
			t.future.reject(context.Canceled)
			return false
		default:
			return true
		}
	}

	result, err := t.work(combined, argument)
	switch classify(t.inner, outer, err) {
	case outcomeSuccess:
		t.future.resolve(result)
		return false
	case outcomeUserCancel:
		t.future.reject(context.Canceled)
		return false
	case outcomeHostCancel:
		// Interrupted, not genuinely attempted: preserve the retry budget.
		return true
	default: // outcomeFailure
		t.attempts--
		if t.attempts > 0 {
			return true
		}
		t.future.reject(err)
		return false
	}
}

// FailAttempt charges one attempt against the task's retry budget for a
// failure that happened before Work ever ran (argument acquisition or
// activation). It returns true if the task should be reverted for another
// attempt, false if its budget is exhausted, in which case its Future has
// already been rejected with err.
func (t *Task[A, R]) FailAttempt(err error) bool {
	t.attempts--
	if t.attempts > 0 {
		return true
	}
	t.future.reject(err)
	return false
}

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeFailure
	outcomeHostCancel
	outcomeUserCancel
)

func classify(inner, outer context.Context, err error) outcome {
	if err == nil {
		return outcomeSuccess
	}
	if inner.Err() != nil {
		return outcomeUserCancel
	}
	if outer.Err() != nil {
		return outcomeHostCancel
	}
	return outcomeFailure
}

// combineContexts links an outer (per-call, host-supplied) context and an
// inner (task-owned) context so cancellation from either is observed by
// work. The returned cleanup stops the link; it must always be deferred.
func combineContexts(outer, inner context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(outer)
	stop := context.AfterFunc(inner, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Future is a one-shot promise: it resolves or rejects exactly once, and
// Wait may be called any number of times (including concurrently) to
// observe that single outcome.
type Future[R any] struct {
	done   chan struct{}
	once   sync.Once
	result R
	err    error
}

func newFuture[R any]() *Future[R] {
	return &Future[R]{done: make(chan struct{})}
}

func (f *Future[R]) resolve(r R) {
	f.once.Do(func() {
		f.result = r
		close(f.done)
	})
}

func (f *Future[R]) reject(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Wait blocks until the future resolves, rejects, or ctx is done.
func (f *Future[R]) Wait(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// Done returns a channel closed once the future has a result.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}
