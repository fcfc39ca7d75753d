package taskforge

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// ScheduledWork is the function a ScheduledTask runs at each due occurrence.
// Unlike Task, scheduled work takes no pooled argument: the scheduler
// families (§6) only ever schedule self-contained work.
type ScheduledWork[R any] func(ctx context.Context) (R, error)

// recurrence computes the next due time for a ScheduledTask and advances
// past an occurrence once it has fired.
type recurrence interface {
	peek(now time.Time) (time.Time, bool)
	advance(now time.Time)
}

type onceRecurrence struct {
	at   time.Time
	used bool
}

func (o *onceRecurrence) peek(now time.Time) (time.Time, bool) {
	if o.used {
		return time.Time{}, false
	}
	return o.at, true
}

func (o *onceRecurrence) advance(time.Time) { o.used = true }

type intervalRecurrence struct {
	next   time.Time
	period time.Duration
}

// newIntervalRecurrence advances start to the first occurrence at or after
// now, so a schedule registered well after its nominal start time catches
// up to the present rather than firing a burst of past occurrences.
func newIntervalRecurrence(start time.Time, period time.Duration, now time.Time) *intervalRecurrence {
	next := start
	if period > 0 {
		for next.Before(now) {
			next = next.Add(period)
		}
	}
	return &intervalRecurrence{next: next, period: period}
}

func (r *intervalRecurrence) peek(time.Time) (time.Time, bool) { return r.next, true }

func (r *intervalRecurrence) advance(time.Time) { r.next = r.next.Add(r.period) }

type cronRecurrence struct {
	schedule cron.Schedule
}

// newCronRecurrence parses a standard five-field-plus-seconds cron
// expression, matching the "with seconds" parser convention.
func newCronRecurrence(expr string) (*cronRecurrence, error) {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return &cronRecurrence{schedule: schedule}, nil
}

func (r *cronRecurrence) peek(now time.Time) (time.Time, bool) { return r.schedule.Next(now), true }

func (r *cronRecurrence) advance(time.Time) {} // Next is always recomputed from now

// ScheduledTask is a time-triggered unit of work: it fires at each due
// occurrence computed by its recurrence policy, up to an optional budget,
// emitting every result to a Sink.
type ScheduledTask[R any] struct {
	ID       uuid.UUID
	Metadata map[string]any

	work        ScheduledWork[R]
	recur       recurrence
	budget      int32 // -1 means unlimited
	inner       context.Context
	cancelInner context.CancelFunc
	sink        *Sink[R]
}

func newScheduledTask[R any](recur recurrence, budget int, work ScheduledWork[R]) *ScheduledTask[R] {
	inner, cancel := context.WithCancel(context.Background())
	b := int32(budget)
	if budget <= 0 {
		b = -1
	}
	return &ScheduledTask[R]{
		ID:          uuid.New(),
		work:        work,
		recur:       recur,
		budget:      b,
		inner:       inner,
		cancelInner: cancel,
		sink:        newSink[R](),
	}
}

// NewOnceTask schedules work to run exactly once at t, returning a Future
// for its single outcome.
func NewOnceTask[R any](at time.Time, work ScheduledWork[R]) (*ScheduledTask[R], *Future[R]) {
	st := newScheduledTask(&onceRecurrence{at: at}, 1, work)
	fut := newFuture[R]()
	ch, _ := st.sink.Subscribe()
	go func() {
		res, ok := <-ch
		if !ok {
			fut.reject(context.Canceled)
			return
		}
		if res.Err != nil {
			fut.reject(res.Err)
		} else {
			fut.resolve(res.Value)
		}
	}()
	return st, fut
}

// NewIntervalTask schedules work to run repeatedly every period, starting
// at start (catching up to "now" if start lies in the past), for up to
// budget occurrences (0 or negative means unlimited). Subscribe to the
// returned Sink to observe each occurrence's result.
func NewIntervalTask[R any](start time.Time, period time.Duration, budget int, work ScheduledWork[R]) *ScheduledTask[R] {
	return newScheduledTask(newIntervalRecurrence(start, period, time.Now()), budget, work)
}

// NewCronTask schedules work according to a cron expression (with a
// leading seconds field), for up to budget occurrences.
func NewCronTask[R any](expr string, budget int, work ScheduledWork[R]) (*ScheduledTask[R], error) {
	recur, err := newCronRecurrence(expr)
	if err != nil {
		return nil, err
	}
	return newScheduledTask[R](recur, budget, work), nil
}

// Subscribe registers a listener for this task's successive outcomes.
func (t *ScheduledTask[R]) Subscribe() (<-chan Result[R], func()) {
	return t.sink.Subscribe()
}

// Cancel fires the task's own cancellation token; the task will stop being
// scheduled once the scheduler next observes it.
func (t *ScheduledTask[R]) Cancel() {
	t.cancelInner()
}

// live reports whether this task should still be considered for
// scheduling: not cancelled and budget not exhausted.
func (t *ScheduledTask[R]) live() bool {
	return t.inner.Err() == nil && t.budget != 0
}

// NextScheduledTime reports the next due time, if any, measured against
// the current wall clock.
func (t *ScheduledTask[R]) NextScheduledTime(now time.Time) (time.Time, bool) {
	if !t.live() {
		return time.Time{}, false
	}
	return t.recur.peek(now)
}

// Fire runs the task's work once, advances its recurrence, and emits the
// outcome to its sink. It returns true if the task should be reconsidered
// for a future occurrence, false if it has reached a terminal state (this
// was its last occurrence, or it was cancelled) and its sink has been
// closed.
func (t *ScheduledTask[R]) Fire(outer context.Context) bool {
	if t.inner.Err() != nil {
		t.sink.close()
		return false
	}

	combined, cleanup := combineContexts(outer, t.inner)
	result, err := t.work(combined)
	cleanup()

	switch classify(t.inner, outer, err) {
	case outcomeUserCancel:
		t.sink.close()
		return false
	case outcomeHostCancel:
		// Interrupted mid-fire: don't advance or charge the budget, just
		// retry this same occurrence next time the scheduler runs it.
		return true
	}

	now := time.Now()
	t.recur.advance(now)
	if t.budget > 0 {
		t.budget--
	}
	t.sink.emit(Result[R]{Value: result, Err: err})

	if _, ok := t.NextScheduledTime(now); !ok {
		t.sink.close()
		return false
	}
	return true
}
