package taskforge

import "errors"

var (
	// ErrDoubleStarted is returned when Start is called on a worker that
	// has already been started.
	ErrDoubleStarted = errors.New("taskforge: double start")

	// ErrDoubleStopped is returned when Stop is called on a worker that
	// is not currently running.
	ErrDoubleStopped = errors.New("taskforge: double stop")

	// ErrStopTimeout is returned when a worker fails to shut down within
	// the provided timeout during Stop. The worker may still be
	// terminating in the background.
	ErrStopTimeout = errors.New("taskforge: stop timeout")

	// ErrBadPriority is returned by Manager.Enqueue when the requested
	// priority falls outside [0, maxPriority].
	ErrBadPriority = errors.New("taskforge: priority out of range")

	// ErrQueueClosed is returned by service-level enqueue calls once the
	// owning worker has been stopped.
	ErrQueueClosed = errors.New("taskforge: queue closed")
)
