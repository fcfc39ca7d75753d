package taskforge_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/taskforge/taskforge"
)

func TestSchedulerCronFiresRepeatedly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched, err := taskforge.NewScheduler[int](ctx, taskforge.SchedulerConfig{Concurrency: 1}, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer sched.Stop(time.Second)

	var execCount atomic.Int32
	if _, err := sched.AddCronWork("* * * * * *", -1, func(ctx context.Context) (int, error) {
		execCount.Add(1)
		return 0, nil
	}); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2500 * time.Millisecond)
	for time.Now().Before(deadline) && execCount.Load() < 2 {
		time.Sleep(50 * time.Millisecond)
	}
	if execCount.Load() < 2 {
		t.Fatalf("expected at least 2 cron executions within the deadline, got %d", execCount.Load())
	}
}

func TestSchedulerOnceFiresExactlyOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched, err := taskforge.NewScheduler[int](ctx, taskforge.SchedulerConfig{}, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer sched.Stop(time.Second)

	fut := sched.AddScheduledWork(time.Now().Add(10*time.Millisecond), func(ctx context.Context) (int, error) {
		return 99, nil
	})

	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	result, err := fut.Wait(waitCtx)
	if err != nil {
		t.Fatal(err)
	}
	if result != 99 {
		t.Fatalf("expected 99, got %d", result)
	}
}

func TestAddCronWorkToQueueForwardsIntoQueue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue, err := taskforge.NewWorkQueue(ctx, taskforge.WorkQueueConfig{MaxParallel: 1}, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer queue.Stop(time.Second)

	sched, err := taskforge.NewScheduler[struct{}](ctx, taskforge.SchedulerConfig{}, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer sched.Stop(time.Second)

	var ran atomic.Bool
	if _, err := taskforge.AddCronWorkToQueue(sched, queue, "* * * * * *", 1, 1, 0, func(ctx context.Context) error {
		ran.Store(true)
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && !ran.Load() {
		time.Sleep(20 * time.Millisecond)
	}
	if !ran.Load() {
		t.Fatal("expected the forwarded work to run via the queue")
	}
}
