package history

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/taskforge/taskforge"
	"github.com/taskforge/taskforge/internal"
)

const (
	stopped = iota
	started
)

// RetentionConfig configures a RetentionWorker.
type RetentionConfig struct {
	// MaxAge is how long an outcome is kept before it becomes eligible for
	// deletion.
	MaxAge time.Duration
	// Interval is how often a purge attempt runs.
	Interval time.Duration
	// Backoff paces retries of a failed purge. The zero value disables
	// retry pacing beyond the regular Interval.
	Backoff taskforge.BackoffConfig
}

// RetentionWorker periodically purges outcomes older than MaxAge,
// mirroring the teacher's periodic clean-worker shape. A failed purge is
// retried with backoff rather than on the very next regular tick.
type RetentionWorker struct {
	state atomic.Int32

	cleaner  Cleaner
	task     internal.TimerTask
	log      *slog.Logger
	maxAge   time.Duration
	interval time.Duration
	backoff  taskforge.BackoffConfig
	failures atomic.Uint32
}

func NewRetentionWorker(cleaner Cleaner, cfg *RetentionConfig, log *slog.Logger) *RetentionWorker {
	return &RetentionWorker{
		cleaner:  cleaner,
		log:      log,
		maxAge:   cfg.MaxAge,
		interval: cfg.Interval,
		backoff:  cfg.Backoff,
	}
}

func (w *RetentionWorker) purge(ctx context.Context) {
	for {
		before := time.Now().Add(-w.maxAge)
		count, err := w.cleaner.Clean(ctx, before)
		if err == nil {
			w.failures.Store(0)
			w.log.Info("purged outcomes", "count", count)
			return
		}
		n := w.failures.Add(1)
		w.log.Error("history purge failed", "err", err, "failures", n)
		delay, ok := nextBackoff(w.backoff, n)
		if !ok {
			return
		}
		sleepOrDone(ctx, delay)
		if ctx.Err() != nil {
			return
		}
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// nextBackoff computes the delay before retrying a failed purge; it
// reimplements the root package's backoff formula locally since that
// package keeps its counter type unexported.
func nextBackoff(cfg taskforge.BackoffConfig, attempt uint32) (time.Duration, bool) {
	if cfg.InitialInterval <= 0 {
		return 0, false
	}
	if cfg.MaxRetries > 0 && attempt > cfg.MaxRetries {
		return 0, false
	}
	exp := float64(cfg.InitialInterval) * math.Pow(cfg.Multiplier, float64(attempt-1))
	if cfg.MaxInterval > 0 && exp > float64(cfg.MaxInterval) {
		exp = float64(cfg.MaxInterval)
	}
	if cfg.RandomizationFactor > 0 {
		delta := cfg.RandomizationFactor * exp
		exp = (exp - delta) + rand.Float64()*(2*delta)
	}
	return time.Duration(exp), true
}

func (w *RetentionWorker) Start(ctx context.Context) error {
	if !w.state.CompareAndSwap(stopped, started) {
		return taskforge.ErrDoubleStarted
	}
	w.task.Start(ctx, w.purge, w.interval)
	return nil
}

func (w *RetentionWorker) Stop(timeout time.Duration) error {
	if !w.state.CompareAndSwap(started, stopped) {
		return taskforge.ErrDoubleStopped
	}
	done := w.task.Stop()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return taskforge.ErrStopTimeout
	}
}
