package taskforge

import (
	"sync/atomic"
	"time"

	"github.com/taskforge/taskforge/internal"
)

const (
	stopped = iota
	started
)

// lcBase is the embeddable start/stop state machine shared by every
// long-running component in this package (Worker, SchedulerWorker). The
// history submodule's RetentionWorker cannot embed it and keeps its own.
type lcBase struct {
	state atomic.Int32
}

func (lb *lcBase) tryStart() error {
	if !lb.state.CompareAndSwap(stopped, started) {
		return ErrDoubleStarted
	}
	return nil
}

func (lb *lcBase) tryStop(timeout time.Duration, df internal.DoneFunc) error {
	if !lb.state.CompareAndSwap(started, stopped) {
		return ErrDoubleStopped
	}
	done := df()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return ErrStopTimeout
	}
}
