package taskforge_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/taskforge/taskforge"
)

type throttledResource struct {
	uses atomic.Int32
}

func (r *throttledResource) ThrottleDelay() time.Duration { return 80 * time.Millisecond }

func TestThrottledArgumentSpacesConsecutiveUses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res := &throttledResource{}
	q, err := taskforge.NewStaticAccessQueue(ctx, taskforge.AccessQueueConfig{}, []*throttledResource{res}, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer q.Stop(time.Second)

	start := time.Now()
	futures := make([]*taskforge.Future[struct{}], 3)
	for i := range futures {
		fut, err := q.Enqueue(func(ctx context.Context, r *throttledResource) error {
			r.uses.Add(1)
			return nil
		}, 1, 0)
		if err != nil {
			t.Fatal(err)
		}
		futures[i] = fut
	}

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	for _, fut := range futures {
		if _, err := fut.Wait(waitCtx); err != nil {
			t.Fatal(err)
		}
	}

	// Two throttle gaps of ~80ms between three uses of the single resource.
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Fatalf("expected throttling to space out consecutive uses, elapsed %v", elapsed)
	}
	if res.uses.Load() != 3 {
		t.Fatalf("expected 3 uses, got %d", res.uses.Load())
	}
}

func TestReusableSourceBuildsLazily(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var built atomic.Int32
	q, err := taskforge.NewReusableAccessQueue(ctx, taskforge.AccessQueueConfig{}, func(ctx context.Context) (*throttledResource, error) {
		built.Add(1)
		return &throttledResource{}, nil
	}, 2, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer q.Stop(time.Second)

	time.Sleep(50 * time.Millisecond)
	if built.Load() != 0 {
		t.Fatalf("expected no resource built before first use, got %d", built.Load())
	}

	fut, err := q.Enqueue(func(ctx context.Context, r *throttledResource) error {
		r.uses.Add(1)
		return nil
	}, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	if _, err := fut.Wait(waitCtx); err != nil {
		t.Fatal(err)
	}
	if built.Load() != 1 {
		t.Fatalf("expected exactly 1 resource built on first use, got %d", built.Load())
	}
}
