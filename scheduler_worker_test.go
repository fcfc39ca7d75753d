package taskforge_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/taskforge/taskforge"
)

func TestSchedulerWorkerDispatchesDueOccurrence(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr := taskforge.NewSchedulerManager[int]()
	w := taskforge.NewSchedulerWorker(mgr, nil, testLogger())
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop(time.Second)

	task, fut := taskforge.NewOnceTask(time.Now(), func(ctx context.Context) (int, error) {
		return 9, nil
	})
	mgr.Add(task)

	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	result, err := fut.Wait(waitCtx)
	if err != nil {
		t.Fatal(err)
	}
	if result != 9 {
		t.Fatalf("expected 9, got %d", result)
	}
}

func TestSchedulerWorkerCatchesUpBatchWithinEpsilon(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr := taskforge.NewSchedulerManager[int]()
	w := taskforge.NewSchedulerWorker(mgr, &taskforge.SchedulerWorkerConfig{Concurrency: 4}, testLogger())
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop(time.Second)

	var fired atomic.Int32
	now := time.Now()
	for i := 0; i < 3; i++ {
		task, _ := taskforge.NewOnceTask(now.Add(time.Duration(i)*time.Millisecond), func(ctx context.Context) (int, error) {
			fired.Add(1)
			return 0, nil
		})
		mgr.Add(task)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if fired.Load() == 3 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected all 3 near-simultaneous occurrences to fire, got %d", fired.Load())
}

func TestSchedulerWorkerReportsOutcomeAndReschedulesRecurring(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr := taskforge.NewSchedulerManager[struct{}]()
	var outcomes atomic.Int32
	w := taskforge.NewSchedulerWorker(mgr, &taskforge.SchedulerWorkerConfig{
		OnOutcome: func(id string, stillLive bool) { outcomes.Add(1) },
	}, testLogger())
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop(time.Second)

	var runs atomic.Int32
	task := taskforge.NewIntervalTask(time.Now(), 15*time.Millisecond, 2, func(ctx context.Context) (struct{}, error) {
		runs.Add(1)
		return struct{}{}, nil
	})
	mgr.Add(task)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if runs.Load() == 2 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if runs.Load() != 2 {
		t.Fatalf("expected the budget-limited recurring task to fire exactly twice, got %d", runs.Load())
	}
	if outcomes.Load() == 0 {
		t.Fatal("expected at least one OnOutcome callback")
	}
}
