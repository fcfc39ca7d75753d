package taskforge_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/taskforge/taskforge"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorkQueueRunsWork(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := testLogger()
	q, err := taskforge.NewWorkQueue(ctx, taskforge.WorkQueueConfig{MaxParallel: 2}, log)
	if err != nil {
		t.Fatal(err)
	}
	defer q.Stop(time.Second)

	fut, err := q.Enqueue(func(ctx context.Context) error { return nil }, 1, 0)
	if err != nil {
		t.Fatal(err)
	}

	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	if _, err := fut.Wait(waitCtx); err != nil {
		t.Fatal(err)
	}
}

func TestWorkQueueRejectsEnqueueAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := testLogger()
	q, err := taskforge.NewWorkQueue(ctx, taskforge.WorkQueueConfig{}, log)
	if err != nil {
		t.Fatal(err)
	}
	if err := q.Stop(time.Second); err != nil {
		t.Fatal(err)
	}

	if _, err := q.Enqueue(func(ctx context.Context) error { return nil }, 1, 0); !errors.Is(err, taskforge.ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
}

func TestWorkQueueRetriesUntilExhausted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := testLogger()
	q, err := taskforge.NewWorkQueue(ctx, taskforge.WorkQueueConfig{MaxParallel: 1}, log)
	if err != nil {
		t.Fatal(err)
	}
	defer q.Stop(time.Second)

	var calls atomic.Int32
	fut, err := q.Enqueue(func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("always fails")
	}, 3, 0)
	if err != nil {
		t.Fatal(err)
	}

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	if _, err := fut.Wait(waitCtx); err == nil {
		t.Fatal("expected eventual failure")
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}
