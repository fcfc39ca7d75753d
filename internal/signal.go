package internal

import (
	"context"
	"sync"
	"time"
)

// Signal is a broadcast wakeup primitive: Raise wakes every Wait call
// blocked at the time it fires and swaps in a fresh channel, so a Wait
// issued afterwards blocks until the next Raise. Signal keeps no "has work"
// flag of its own; callers pair it with a check-then-wait loop (see
// Manager.WaitForTask).
type Signal struct {
	mu sync.Mutex
	ch chan struct{}
}

func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{})}
}

// Raise wakes all current waiters and arms a fresh channel for the next round.
func (s *Signal) Raise() {
	s.mu.Lock()
	close(s.ch)
	s.ch = make(chan struct{})
	s.mu.Unlock()
}

func (s *Signal) current() chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ch
}

// Wait blocks until the next Raise or until ctx is done.
func (s *Signal) Wait(ctx context.Context) error {
	ch := s.current()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitFor blocks until the next Raise, until d elapses, or until ctx is done.
// It never returns an error: callers distinguish timeout/raise from
// cancellation by checking ctx themselves afterwards.
func (s *Signal) WaitFor(ctx context.Context, d time.Duration) {
	ch := s.current()
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ch:
	case <-timer.C:
	case <-ctx.Done():
	}
}
