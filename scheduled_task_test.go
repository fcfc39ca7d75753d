package taskforge_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/taskforge/taskforge"
)

func TestOnceTaskResolvesFuture(t *testing.T) {
	task, fut := taskforge.NewOnceTask(time.Now(), func(ctx context.Context) (int, error) {
		return 7, nil
	})

	if task.Fire(context.Background()) {
		t.Fatal("expected a one-shot task to report not-live after firing")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	result, err := fut.Wait(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if result != 7 {
		t.Fatalf("expected 7, got %d", result)
	}
}

func TestIntervalTaskRepeatsAndRespectsBudget(t *testing.T) {
	task := taskforge.NewIntervalTask(time.Now(), time.Millisecond, 3, func(ctx context.Context) (int, error) {
		return 1, nil
	})

	ch, _ := task.Subscribe()

	var fires int
	for i := 0; i < 3; i++ {
		if !task.Fire(context.Background()) && i < 2 {
			t.Fatalf("expected task still live after occurrence %d", i)
		}
		<-ch
		fires++
	}
	if fires != 3 {
		t.Fatalf("expected 3 occurrences, got %d", fires)
	}
	if task.Fire(context.Background()) {
		t.Fatal("expected task exhausted after its budget")
	}
}

func TestIntervalTaskCatchesUpFromPast(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	task := taskforge.NewIntervalTask(past, 10*time.Minute, -1, func(ctx context.Context) (int, error) {
		return 0, nil
	})
	next, ok := task.NextScheduledTime(time.Now())
	if !ok {
		t.Fatal("expected a next scheduled time")
	}
	if next.Before(time.Now().Add(-time.Second)) {
		t.Fatalf("expected next occurrence to have caught up to now, got %v", next)
	}
}

func TestScheduledTaskCancelStopsFiring(t *testing.T) {
	var calls atomic.Int32
	task, _ := taskforge.NewOnceTask(time.Now().Add(time.Hour), func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 0, nil
	})
	task.Cancel()

	if task.Fire(context.Background()) {
		t.Fatal("expected cancelled task to report not live")
	}
	if calls.Load() != 0 {
		t.Fatal("expected work to never run once cancelled")
	}
}
