// Package executor serializes screen transitions.
//
// An [Executor] owns a single worker goroutine and an unbounded FIFO queue.
// Jobs run strictly one at a time in submission order. When the worker dequeues
// a job it hands the job to a [Dispatcher], the UI-affinity context where every
// screen host call must happen, and then waits for the job's completion signal
// before touching the next job. A transition therefore cannot start before the
// on-screen effect of the previous one has resolved.
//
// The wait is a receive on a one-shot channel, so the worker parks without
// holding an OS thread and the UI context itself is never blocked.
//
// # Dispatchers
//
//   - [Inline] runs jobs directly on the worker goroutine (tests, headless use)
//   - [Loop] is a dedicated goroutine acting as the UI thread
//   - tui.Dispatcher runs jobs inside a bubbletea program's update loop
//
// # Failure Reporting
//
// A job reports failure through its done callback. Failures are delivered to
// the job's [Ticket], logged, counted in [Stats], and collected until the next
// [Executor.Flush]. A job that panics on the UI context is reported as an
// INTERNAL_ERROR failure instead of stalling the queue.
//
// There is no per-job timeout: a host that never calls done blocks the queue.
// Never call [Executor.Flush] or [Ticket.Wait] from the UI context itself; the
// worker would wait for the UI context while the UI context waits for the
// worker.
package executor
