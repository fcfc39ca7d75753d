package taskforge

import (
	"context"
	"time"
)

// Source supplies the argument each concurrent worker slot of a Processor
// uses to run tasks. A Source's capacity IS the processor's concurrency
// bound: one persistent worker goroutine per slot, each holding (or
// rebuilding) exactly one argument value at a time.
type Source[A any] struct {
	cap          int
	reusePerTask bool
	acquire      func(ctx context.Context, slot int, prev A, prevOK bool) (A, error)
	dispose      func(ctx context.Context, arg A)
}

// Capacity reports the number of concurrent worker slots this source
// supports.
func (s *Source[A]) Capacity() int {
	return s.cap
}

func deactivate[A any](ctx context.Context, arg A) {
	if d, ok := any(arg).(Activatable); ok && d.IsActive() {
		_ = d.Deactivate(ctx)
	}
}

// NullSource supplies no meaningful argument at all: every task receives
// the zero value of A. Used by WorkQueue, where tasks close over everything
// they need and take no resource. maxParallel is the processor's
// concurrency bound.
func NullSource[A any](maxParallel int) *Source[A] {
	var zero A
	return &Source[A]{
		cap: maxParallel,
		acquire: func(ctx context.Context, slot int, prev A, prevOK bool) (A, error) {
			return zero, nil
		},
		dispose: func(ctx context.Context, arg A) {},
	}
}

// StaticSource supplies a fixed set of pre-built argument values, one per
// worker slot, for the lifetime of the processor. Pass a single-element
// slice for the static-single variant.
func StaticSource[A any](values []A) *Source[A] {
	return &Source[A]{
		cap: len(values),
		acquire: func(ctx context.Context, slot int, prev A, prevOK bool) (A, error) {
			if prevOK {
				return prev, nil
			}
			return values[slot], nil
		},
		dispose: deactivate[A],
	}
}

// ReusableSource lazily builds up to cap argument instances via factory,
// one per worker slot, and keeps each for the processor's lifetime once
// built. Pass cap == 1 for the reusable-single variant.
func ReusableSource[A any](factory func(ctx context.Context) (A, error), cap int) *Source[A] {
	return &Source[A]{
		cap: cap,
		acquire: func(ctx context.Context, slot int, prev A, prevOK bool) (A, error) {
			if prevOK {
				return prev, nil
			}
			return factory(ctx)
		},
		dispose: deactivate[A],
	}
}

// OneShotSource builds a fresh argument via factory for every single task
// and disposes of it immediately after use. maxParallel is the processor's
// concurrency bound. Pass maxParallel == 1 for the one-shot-single variant.
func OneShotSource[A any](factory func(ctx context.Context) (A, error), maxParallel int) *Source[A] {
	return &Source[A]{
		cap:          maxParallel,
		reusePerTask: true,
		acquire: func(ctx context.Context, slot int, prev A, prevOK bool) (A, error) {
			return factory(ctx)
		},
		dispose: deactivate[A],
	}
}

func activateIfNeeded(ctx context.Context, arg any) error {
	if act, ok := arg.(Activatable); ok && !act.IsActive() {
		return act.Activate(ctx)
	}
	return nil
}

func throttleDelay(arg any) time.Duration {
	if t, ok := arg.(Throttled); ok {
		return t.ThrottleDelay()
	}
	return 0
}
