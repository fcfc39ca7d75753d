package taskforge

import (
	"context"
	"sync"

	"github.com/taskforge/taskforge/internal"
)

// Metadata travels with a Task between Manager and Processor; it carries
// whatever the manager needs to re-insert the task correctly on revert.
type Metadata struct {
	priority int
}

type taskBucket[A, R any] struct {
	items []*Task[A, R]
}

func (b *taskBucket[A, R]) pushBack(t *Task[A, R]) {
	b.items = append(b.items, t)
}

func (b *taskBucket[A, R]) popFront() (*Task[A, R], bool) {
	if len(b.items) == 0 {
		return nil, false
	}
	t := b.items[0]
	b.items[0] = nil
	b.items = b.items[1:]
	return t, true
}

// Manager is a priority-ordered holding area for pending tasks: strict FIFO
// within a priority level, priority-first across levels, with no fairness
// guarantee between levels (a saturated high-priority level can starve
// lower ones by design). A Manager constructed with maxPriority 0 behaves
// as a single plain FIFO queue.
type Manager[A, R any] struct {
	mu      sync.Mutex
	buckets []taskBucket[A, R]
	sig     *internal.Signal
}

// NewManager builds a Manager accepting priorities in [0, maxPriority].
func NewManager[A, R any](maxPriority int) *Manager[A, R] {
	if maxPriority < 0 {
		maxPriority = 0
	}
	return &Manager[A, R]{
		buckets: make([]taskBucket[A, R], maxPriority+1),
		sig:     internal.NewSignal(),
	}
}

// Enqueue admits task at the given priority. Higher values are serviced
// first; within a single value, order of admission is preserved.
func (m *Manager[A, R]) Enqueue(task *Task[A, R], priority int) error {
	if priority < 0 || priority >= len(m.buckets) {
		return ErrBadPriority
	}
	m.mu.Lock()
	m.buckets[priority].pushBack(task)
	m.mu.Unlock()
	m.sig.Raise()
	return nil
}

// HasTask reports whether any priority level currently holds a task.
func (m *Manager[A, R]) HasTask() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.buckets {
		if len(m.buckets[i].items) > 0 {
			return true
		}
	}
	return false
}

// WaitForTask blocks until HasTask would return true or ctx is cancelled.
// It is a check-then-wait loop over the manager's signal so a raise that
// happens between the check and the wait is never missed.
func (m *Manager[A, R]) WaitForTask(ctx context.Context) error {
	for {
		if m.HasTask() {
			return nil
		}
		if err := m.sig.Wait(ctx); err != nil {
			return err
		}
	}
}

// GetTask pops the highest-priority, longest-waiting task, if any.
func (m *Manager[A, R]) GetTask() (*Task[A, R], Metadata, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.buckets) - 1; i >= 0; i-- {
		if t, ok := m.buckets[i].popFront(); ok {
			return t, Metadata{priority: i}, true
		}
	}
	return nil, Metadata{}, false
}

// RevertTask re-admits task at its original priority, to the tail of that
// level's queue. It performs pure positional re-insertion; attempt
// bookkeeping is the Task's own responsibility (see Task.Execute).
func (m *Manager[A, R]) RevertTask(task *Task[A, R], meta Metadata) {
	m.mu.Lock()
	m.buckets[meta.priority].pushBack(task)
	m.mu.Unlock()
	m.sig.Raise()
}
