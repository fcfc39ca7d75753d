package taskforge

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/taskforge/taskforge/internal"
)

type schedEntry[R any] struct {
	task *ScheduledTask[R]
	at   time.Time
	idx  int
}

type schedHeap[R any] []*schedEntry[R]

func (h schedHeap[R]) Len() int            { return len(h) }
func (h schedHeap[R]) Less(i, j int) bool  { return h[i].at.Before(h[j].at) }
func (h schedHeap[R]) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].idx = i; h[j].idx = j }
func (h *schedHeap[R]) Push(x any) {
	e := x.(*schedEntry[R])
	e.idx = len(*h)
	*h = append(*h, e)
}
func (h *schedHeap[R]) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// SchedulerManager holds the live set of ScheduledTasks in a time-ordered
// min-heap keyed by each task's next due occurrence, grounded on a
// heap-based scheduler dispatcher shape. Cancelled or exhausted tasks are
// elided lazily, as they surface at the top of the heap, rather than swept
// eagerly.
type SchedulerManager[R any] struct {
	mu   sync.Mutex
	heap schedHeap[R]
	sig  *internal.Signal
}

func NewSchedulerManager[R any]() *SchedulerManager[R] {
	return &SchedulerManager[R]{sig: internal.NewSignal()}
}

// Add admits task, computing its first due occurrence against the current
// wall clock. A task whose recurrence is already exhausted (or which has
// been cancelled before ever being added) is silently dropped.
func (m *SchedulerManager[R]) Add(task *ScheduledTask[R]) {
	at, ok := task.NextScheduledTime(time.Now())
	if !ok {
		return
	}
	m.mu.Lock()
	heap.Push(&m.heap, &schedEntry[R]{task: task, at: at})
	m.mu.Unlock()
	m.sig.Raise()
}

// Revert re-admits task after a firing, recomputing its next due
// occurrence. It is a plain alias of Add, named for symmetry with
// Manager.RevertTask at the call site in SchedulerWorker.
func (m *SchedulerManager[R]) Revert(task *ScheduledTask[R]) {
	m.Add(task)
}

func (m *SchedulerManager[R]) evictStale() {
	for m.heap.Len() > 0 && !m.heap[0].task.live() {
		heap.Pop(&m.heap)
	}
}

// NextTime reports the next due occurrence across every live task, if any.
func (m *SchedulerManager[R]) NextTime() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictStale()
	if m.heap.Len() == 0 {
		return time.Time{}, false
	}
	return m.heap[0].at, true
}

// Upcoming returns every live task due within horizon of now, sorted
// ascending by due time (entries sharing an identical due instant are
// adjacent). It is a pure, non-destructive peek: calling it twice without
// an intervening Add/popDue yields an equal snapshot.
func (m *SchedulerManager[R]) Upcoming(horizon time.Duration) []*ScheduledTask[R] {
	now := time.Now()
	cutoff := now.Add(horizon)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictStale()
	var out []*schedEntry[R]
	for _, e := range m.heap {
		if e.task.live() && !e.at.After(cutoff) {
			out = append(out, e)
		}
	}
	sortByAt(out)
	tasks := make([]*ScheduledTask[R], len(out))
	for i, e := range out {
		tasks[i] = e.task
	}
	return tasks
}

func sortByAt[R any](entries []*schedEntry[R]) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].at.Before(entries[j-1].at); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}

// popDue removes and returns every live task due at or before now, plus a
// small catch-up epsilon, used internally by SchedulerWorker to batch a
// round of dispatch.
func (m *SchedulerManager[R]) popDue(now time.Time) []*ScheduledTask[R] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictStale()
	var due []*ScheduledTask[R]
	for m.heap.Len() > 0 && !m.heap[0].at.After(now) {
		e := heap.Pop(&m.heap).(*schedEntry[R])
		due = append(due, e.task)
	}
	return due
}

// WaitForNewTask blocks until a task is added, the top of the heap
// changes via a revert, or ctx is cancelled.
func (m *SchedulerManager[R]) WaitForNewTask(ctx context.Context) error {
	return m.sig.Wait(ctx)
}

func (m *SchedulerManager[R]) waitUntil(ctx context.Context, d time.Duration) {
	m.sig.WaitFor(ctx, d)
}
