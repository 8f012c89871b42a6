package executor

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"go.uber.org/atomic"

	"github.com/matzehuels/navgraph/pkg/errors"
	"github.com/matzehuels/navgraph/pkg/observability"
)

// ErrClosed is reported by tickets of jobs submitted after Close.
var ErrClosed = errors.New(errors.ErrCodeClosed, "executor closed")

// Job is one unit of on-screen work.
type Job struct {
	// Name describes the job in logs and hooks (e.g. "present stack home->a").
	Name string

	// Run is invoked on the UI context and must call done exactly once,
	// possibly later. Calls after the first are ignored.
	Run func(done func(error))

	// After, when set, runs on the worker goroutine once the job completed,
	// before the next job starts. seq is the job's ticket sequence number.
	After func(seq uint64, err error)
}

// Ticket tracks a submitted job.
type Ticket struct {
	Seq  uint64
	Name string

	job  Job
	done chan struct{}
	err  error
}

// Done is closed when the job finished.
func (t *Ticket) Done() <-chan struct{} { return t.done }

// Err returns the job outcome. It is only meaningful after Done is closed.
func (t *Ticket) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the job finished or ctx is done.
func (t *Ticket) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats reports executor counters.
type Stats struct {
	Submitted uint64 `json:"submitted"`
	Completed uint64 `json:"completed"`
	Failed    uint64 `json:"failed"`
	Pending   int    `json:"pending"`
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithHooks overrides the globally registered executor hooks.
func WithHooks(h observability.ExecutorHooks) Option {
	return func(e *Executor) {
		if h != nil {
			e.hooks = h
		}
	}
}

// WithContext sets the context handed to hooks. Defaults to context.Background().
func WithContext(ctx context.Context) Option {
	return func(e *Executor) {
		if ctx != nil {
			e.ctx = ctx
		}
	}
}

// Executor runs jobs one at a time, in submission order, on a single worker.
// Submit never blocks. Executor is safe for concurrent use.
type Executor struct {
	dispatcher Dispatcher
	logger     *log.Logger
	hooks      observability.ExecutorHooks
	ctx        context.Context

	mu       sync.Mutex
	queue    []*Ticket
	last     *Ticket
	seq      uint64
	closed   bool
	failures []error

	wake    chan struct{}
	stopped chan struct{}

	submitted atomic.Uint64
	completed atomic.Uint64
	failed    atomic.Uint64
}

// New creates an executor that hands jobs to d and starts its worker.
func New(d Dispatcher, opts ...Option) *Executor {
	if d == nil {
		d = Inline{}
	}
	e := &Executor{
		dispatcher: d,
		logger:     log.Default(),
		ctx:        context.Background(),
		wake:       make(chan struct{}, 1),
		stopped:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.hooks == nil {
		e.hooks = observability.Executor()
	}
	go e.work()
	return e
}

// Submit queues job and returns its ticket. After Close, the returned ticket
// is already done with ErrClosed.
func (e *Executor) Submit(job Job) *Ticket {
	e.mu.Lock()
	e.seq++
	t := &Ticket{Seq: e.seq, Name: job.Name, job: job, done: make(chan struct{})}
	if e.closed {
		e.mu.Unlock()
		t.err = ErrClosed
		close(t.done)
		return t
	}
	e.queue = append(e.queue, t)
	e.last = t
	e.mu.Unlock()

	e.submitted.Inc()
	e.logger.Debug("transition queued", "seq", t.Seq, "job", t.Name)
	e.signal()
	return t
}

func (e *Executor) signal() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Flush waits until every job submitted before the call has finished and
// returns the failures collected since the previous Flush, joined.
func (e *Executor) Flush(ctx context.Context) error {
	e.mu.Lock()
	last := e.last
	e.mu.Unlock()

	if last != nil {
		select {
		case <-last.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	e.mu.Lock()
	failures := e.failures
	e.failures = nil
	e.mu.Unlock()
	return stderrors.Join(failures...)
}

// Close stops accepting jobs and waits for queued jobs to finish or ctx to be
// done. Close is idempotent.
func (e *Executor) Close(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.signal()

	select {
	case <-e.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns a snapshot of the executor counters.
func (e *Executor) Stats() Stats {
	e.mu.Lock()
	pending := len(e.queue)
	e.mu.Unlock()
	return Stats{
		Submitted: e.submitted.Load(),
		Completed: e.completed.Load(),
		Failed:    e.failed.Load(),
		Pending:   pending,
	}
}

func (e *Executor) work() {
	defer close(e.stopped)
	for {
		t, ok := e.next()
		if !ok {
			return
		}
		e.run(t)
	}
}

// next blocks until a job is available. It returns false once the executor
// is closed and the queue is empty.
func (e *Executor) next() (*Ticket, bool) {
	for {
		e.mu.Lock()
		if len(e.queue) > 0 {
			t := e.queue[0]
			e.queue[0] = nil
			e.queue = e.queue[1:]
			e.mu.Unlock()
			return t, true
		}
		closed := e.closed
		e.mu.Unlock()
		if closed {
			return nil, false
		}
		<-e.wake
	}
}

func (e *Executor) run(t *Ticket) {
	start := time.Now()
	e.hooks.OnJobStart(e.ctx, t.Seq, t.Name)

	signal := make(chan error, 1)
	var once sync.Once
	complete := func(err error) {
		once.Do(func() { signal <- err })
	}

	err := e.dispatcher.Dispatch(func() {
		defer func() {
			if r := recover(); r != nil {
				complete(errors.New(errors.ErrCodeInternal, "job %s panicked: %v", t.Name, r))
			}
		}()
		if t.job.Run == nil {
			complete(nil)
			return
		}
		t.job.Run(complete)
	})
	if err != nil {
		complete(errors.Wrap(errors.ErrCodeInternal, err, "dispatch %s", t.Name))
	}
	err = <-signal

	if t.job.After != nil {
		t.job.After(t.Seq, err)
	}

	duration := time.Since(start)
	e.completed.Inc()
	if err != nil {
		e.failed.Inc()
		e.logger.Warn("transition failed", "seq", t.Seq, "job", t.Name, "err", err)
		e.mu.Lock()
		e.failures = append(e.failures, fmt.Errorf("job %d (%s): %w", t.Seq, t.Name, err))
		e.mu.Unlock()
	} else {
		e.logger.Debug("transition complete", "seq", t.Seq, "job", t.Name, "duration", duration)
	}
	e.hooks.OnJobComplete(e.ctx, t.Seq, t.Name, duration, err)

	t.err = err
	close(t.done)
}
