package executor

import (
	"context"
	"sync"

	"github.com/matzehuels/navgraph/pkg/errors"
)

// Dispatcher schedules work on the UI-affinity context.
//
// Dispatch must not wait for fn to finish. It returns an error when fn can no
// longer be scheduled; fn is then never run.
type Dispatcher interface {
	Dispatch(fn func()) error
}

// DispatcherFunc adapts a function to the [Dispatcher] interface.
type DispatcherFunc func(fn func()) error

// Dispatch calls f(fn).
func (f DispatcherFunc) Dispatch(fn func()) error { return f(fn) }

// Inline runs every job on the calling goroutine, which for an [Executor] is
// its worker. Use it when no UI thread exists.
type Inline struct{}

// Dispatch runs fn immediately.
func (Inline) Dispatch(fn func()) error {
	fn()
	return nil
}

// ErrLoopStopped is returned by [Loop.Dispatch] after the loop stopped.
var ErrLoopStopped = errors.New(errors.ErrCodeClosed, "dispatch loop stopped")

// Loop is a dedicated goroutine standing in for a UI thread. Closures passed
// to Dispatch run on it one by one in order.
type Loop struct {
	tasks chan func()

	mu      sync.RWMutex
	stopped bool
	stop    chan struct{}
}

// NewLoop creates a loop. Call [Loop.Run] or [Loop.Start] to process tasks.
func NewLoop() *Loop {
	return &Loop{
		tasks: make(chan func(), 64),
		stop:  make(chan struct{}),
	}
}

// Start runs the loop on a new goroutine until ctx is done or Stop is called.
func (l *Loop) Start(ctx context.Context) {
	go func() { _ = l.Run(ctx) }()
}

// Run processes tasks on the calling goroutine until ctx is done or Stop is
// called. Tasks already accepted by Dispatch are run before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	ctxDone := ctx.Done()
	for {
		select {
		case fn := <-l.tasks:
			fn()
		case <-ctxDone:
			ctxDone = nil
			// Stop may wait on a Dispatch blocked on a full queue, so keep
			// serving tasks while it runs.
			go l.Stop()
		case <-l.stop:
			l.drain()
			return ctx.Err()
		}
	}
}

func (l *Loop) drain() {
	for {
		select {
		case fn := <-l.tasks:
			fn()
		default:
			return
		}
	}
}

// Dispatch queues fn. It blocks only while the task buffer is full.
func (l *Loop) Dispatch(fn func()) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.stopped {
		return ErrLoopStopped
	}
	l.tasks <- fn
	return nil
}

// Stop stops accepting tasks. Stop is idempotent.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.stopped {
		l.stopped = true
		close(l.stop)
	}
}
