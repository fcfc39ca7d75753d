package taskforge_test

import (
	"context"
	"testing"
	"time"

	"github.com/taskforge/taskforge"
)

func TestManagerFIFOWithinPriority(t *testing.T) {
	mgr := taskforge.NewManager[struct{}, int](2)

	var order []int
	newTask := func(n int) *taskforge.Task[struct{}, int] {
		return taskforge.NewTask[struct{}, int](func(ctx context.Context, _ struct{}) (int, error) {
			order = append(order, n)
			return n, nil
		}, 1)
	}

	if err := mgr.Enqueue(newTask(1), 0); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Enqueue(newTask(2), 0); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Enqueue(newTask(3), 2); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Enqueue(newTask(4), 1); err != nil {
		t.Fatal(err)
	}

	for mgr.HasTask() {
		task, _, ok := mgr.GetTask()
		if !ok {
			break
		}
		task.Execute(context.Background(), struct{}{})
	}

	want := []int{3, 4, 1, 2}
	if len(order) != len(want) {
		t.Fatalf("expected %d executions, got %d", len(want), len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("execution order mismatch at %d: want %d got %d", i, want[i], order[i])
		}
	}
}

func TestManagerRejectsBadPriority(t *testing.T) {
	mgr := taskforge.NewManager[struct{}, int](1)
	task := taskforge.NewTask[struct{}, int](func(ctx context.Context, _ struct{}) (int, error) {
		return 0, nil
	}, 1)
	if err := mgr.Enqueue(task, 5); err != taskforge.ErrBadPriority {
		t.Fatalf("expected ErrBadPriority, got %v", err)
	}
}

func TestManagerWaitForTaskWakesOnEnqueue(t *testing.T) {
	mgr := taskforge.NewManager[struct{}, int](0)

	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		done <- mgr.WaitForTask(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	task := taskforge.NewTask[struct{}, int](func(ctx context.Context, _ struct{}) (int, error) {
		return 0, nil
	}, 1)
	if err := mgr.Enqueue(task, 0); err != nil {
		t.Fatal(err)
	}

	if err := <-done; err != nil {
		t.Fatalf("expected WaitForTask to return nil, got %v", err)
	}
}

func TestManagerRevertGoesToTail(t *testing.T) {
	mgr := taskforge.NewManager[struct{}, int](0)

	var order []int
	newTask := func(n int) *taskforge.Task[struct{}, int] {
		return taskforge.NewTask[struct{}, int](func(ctx context.Context, _ struct{}) (int, error) {
			order = append(order, n)
			return n, nil
		}, 1)
	}

	first := newTask(1)
	second := newTask(2)
	if err := mgr.Enqueue(first, 0); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Enqueue(second, 0); err != nil {
		t.Fatal(err)
	}

	task, meta, _ := mgr.GetTask()
	mgr.RevertTask(task, meta) // re-admit task 1 without executing it

	for mgr.HasTask() {
		task, _, ok := mgr.GetTask()
		if !ok {
			break
		}
		task.Execute(context.Background(), struct{}{})
	}

	want := []int{2, 1}
	if len(order) != len(want) || order[0] != want[0] || order[1] != want[1] {
		t.Fatalf("expected order %v, got %v", want, order)
	}
}
