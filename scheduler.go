package taskforge

import (
	"context"
	"log/slog"
	"time"
)

// SchedulerConfig configures a Scheduler.
type SchedulerConfig struct {
	// Concurrency bounds how many due occurrences fire in parallel within
	// a single dispatch round. Defaults to 1.
	Concurrency int
	Scope       ScopeFactory
	// OnOutcome is called after every firing; see SchedulerWorkerConfig.
	OnOutcome func(id string, stillLive bool)
}

// Scheduler is a calendar-driven dispatcher over ScheduledWork[R]: one-shot
// at a time, fixed interval (with catch-up from the past), or cron.
type Scheduler[R any] struct {
	manager *SchedulerManager[R]
	worker  *SchedulerWorker[R]
}

// NewScheduler builds and starts a Scheduler.
func NewScheduler[R any](ctx context.Context, cfg SchedulerConfig, log *slog.Logger) (*Scheduler[R], error) {
	mgr := NewSchedulerManager[R]()
	w := NewSchedulerWorker(mgr, &SchedulerWorkerConfig{
		Concurrency: cfg.Concurrency,
		Scope:       cfg.Scope,
		OnOutcome:   cfg.OnOutcome,
	}, log)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return &Scheduler[R]{manager: mgr, worker: w}, nil
}

// AddScheduledWork registers work to run exactly once at t, returning a
// Future for its single outcome.
func (s *Scheduler[R]) AddScheduledWork(at time.Time, work ScheduledWork[R]) *Future[R] {
	task, fut := NewOnceTask(at, work)
	s.manager.Add(task)
	return fut
}

// AddRepeatedWork registers work to run every period starting at start (or,
// if start has already passed, at the first start + k*period at or after
// now, skipping the missed occurrences), for up to budget
// occurrences (<= 0 for unlimited). The returned ScheduledTask can be
// cancelled or subscribed to for per-occurrence results.
func (s *Scheduler[R]) AddRepeatedWork(start time.Time, period time.Duration, budget int, work ScheduledWork[R]) *ScheduledTask[R] {
	task := NewIntervalTask(start, period, budget, work)
	s.manager.Add(task)
	return task
}

// AddCronWork registers work to run on a cron schedule (five fields plus a
// leading seconds field), for up to budget occurrences (<= 0 for
// unlimited).
func (s *Scheduler[R]) AddCronWork(expr string, budget int, work ScheduledWork[R]) (*ScheduledTask[R], error) {
	task, err := NewCronTask(expr, budget, work)
	if err != nil {
		return nil, err
	}
	s.manager.Add(task)
	return task, nil
}

// Upcoming reports every live scheduled occurrence due within horizon.
func (s *Scheduler[R]) Upcoming(horizon time.Duration) []*ScheduledTask[R] {
	return s.manager.Upcoming(horizon)
}

// Stop gracefully stops the scheduler's worker.
func (s *Scheduler[R]) Stop(timeout time.Duration) error {
	return s.worker.Stop(timeout)
}

// AddCronWorkToQueue registers cron-triggered work that, rather than
// executing inline on the scheduler's own worker, is forwarded into q for
// bounded-concurrency dispatch alongside q's other work. This is the
// "forwarding into a C2/C3 pipeline" control-flow path: the scheduler fires
// on time, the queue governs concurrency and retries.
func AddCronWorkToQueue(s *Scheduler[struct{}], q *WorkQueue, expr string, budget, attempts, priority int, work func(ctx context.Context) error) (*ScheduledTask[struct{}], error) {
	return s.AddCronWork(expr, budget, func(ctx context.Context) (struct{}, error) {
		_, err := q.Enqueue(work, attempts, priority)
		return struct{}{}, err
	})
}
