// Package taskforge provides in-process background task execution: bounded
// concurrency over work items, pooled resources, data-processing pipelines
// and a calendar-driven scheduler, all sharing one task-manager /
// task-processor / worker core.
//
// # Overview
//
// taskforge does not model a durable queue. Tasks live only in memory; there
// is no persistence across a process restart and no cross-process
// coordination. What it does provide is a small set of composable pieces:
//
//	Task[A, R]       — a unit of work bound to a function taking an
//	                    argument of type A and producing a result of type R,
//	                    with a bounded retry budget.
//	Manager[A, R]     — a priority-ordered, strictly-FIFO-within-priority
//	                    holding area for pending tasks.
//	Source[A]         — a strategy for supplying the argument a task needs:
//	                    none, a fixed set, a lazily grown pool, or a fresh
//	                    value per task.
//	Processor[A, R]   — drains a Manager, pairs each task with an argument
//	                    from a Source, and runs it under a bounded number of
//	                    concurrent workers.
//	Worker[A, R]      — the event loop: wait for work, hand it to the
//	                    processor, repeat until stopped.
//
// On top of these, four service types cover the external interfaces:
// WorkQueue (no argument), AccessQueue[R] (pooled resource R), Conveyor[A, D,
// T] (a processing pipeline closing over per-call input D), and Scheduler[R]
// (calendar-driven: once, fixed interval, or cron).
//
// # Delivery Semantics
//
// A task is delivered exactly once per attempt; on a genuine failure
// (handler error unrelated to cancellation) it is retried up to its attempt
// budget, then abandoned. Cancellation — by the caller or the task's own
// inner token — never counts against the retry budget. There is no
// visibility timeout or lease: a task is either queued, running, or
// finished; a process crash loses whatever was in memory.
//
// # State Machine
//
// A Task's lifecycle:
//
//	queued -> running -> done
//	running -> queued    (reverted: transient failure, budget remains)
//	running -> dead      (retry budget exhausted)
//	running -> cancelled (user or host cancellation)
//
// A ScheduledTask additionally cycles running -> queued for every future
// occurrence until its recurrence policy or budget is exhausted or it is
// cancelled.
//
// # Retry Policy
//
// Retries are immediate: a reverted task goes back to the tail of its
// priority bucket, there is no backoff delay on the hot path. (The optional
// history ledger submodule does use exponential backoff, but only to pace
// retries of its own best-effort purge, not task execution.)
//
// # Worker
//
//	coordinates waiting for work, pulling tasks from a Manager and running
//	them through a Processor.
//
// It:
//
//   - blocks on a level-triggered signal until a task is available
//   - delegates dispatch and argument acquisition to a Processor
//   - recovers panics from a single bad drain iteration without dying
//   - supports graceful shutdown with a timeout
//
// # Interfaces
//
// taskforge defines a small number of capability interfaces argument types
// may optionally implement:
//
//	Activatable — lazy connect/disconnect around first use and retirement
//	Throttled   — a minimum gap enforced between consecutive uses
//
// # Concurrency Model
//
// A Processor runs exactly as many concurrent workers as its Source reports
// capacity for; that count IS the bound on in-flight tasks, there is no
// separate semaphore layered on top. Pulling (Manager) and dispatch
// (Processor) are decoupled through a bounded internal queue so spikes are
// smoothed rather than dropped.
//
// Shutdown is graceful: in-flight tasks are allowed to finish, subject to a
// configurable timeout.
//
// # Summary
//
// taskforge provides a minimal, generics-based foundation for in-process
// background execution with explicit lifecycle control, bounded retry
// semantics and pluggable argument strategies.
package taskforge
