// Package history provides an optional, append-only ledger of terminal
// task outcomes, backed by SQLite via bun.
//
// # Overview
//
// history is a side-channel for operational introspection: it records
// that a Task or ScheduledTask reached Done, Dead or Cancelled, when, and
// with what message. It is not a recovery mechanism. The core taskforge
// package never reads this ledger to reconstruct a Manager or
// SchedulerManager's live state — a process restart still loses whatever
// was queued or scheduled in memory, by design.
//
// # Recording
//
// Recorder appends one Outcome per terminal event. Recording is
// best-effort from the caller's perspective: a failed append is logged by
// the caller and never blocks or fails the task it describes.
//
// # Retention
//
// RetentionWorker periodically invokes a Cleaner to delete outcomes older
// than a configured age, mirroring the teacher's periodic clean-worker
// shape. A failed purge is retried with backoff rather than immediately,
// since purge failures are typically transient storage issues rather than
// something an immediate retry fixes.
package history
