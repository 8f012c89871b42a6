package host

import (
	"fmt"
	"sync"

	"github.com/matzehuels/navgraph/pkg/screen"
)

// Op names a host operation.
type Op string

// Host operations as recorded by [Recorder].
const (
	OpPresent Op = "present"
	OpRewind  Op = "rewind"
	OpRemove  Op = "remove"
)

// Call is one recorded host invocation.
type Call struct {
	Op         Op
	Transition screen.Transition
	Origin     screen.Handle // Present: origin; Rewind: screen being rewound to
	Target     screen.Handle // Present: destination; Remove: screen removed
	Request    Request       // Present only
	Err        error         // outcome reported by the wrapped host
}

func (c Call) String() string {
	switch c.Op {
	case OpPresent:
		return fmt.Sprintf("present %s #%d -> #%d", c.Transition, c.Origin, c.Target)
	case OpRewind:
		return fmt.Sprintf("rewind %s to #%d", c.Transition, c.Origin)
	default:
		return fmt.Sprintf("remove %s #%d", c.Transition, c.Target)
	}
}

// Recorder is an instrumented host: it records every call in invocation order
// and forwards it to an optional inner host. Without an inner host every call
// succeeds immediately.
type Recorder struct {
	inner Host

	mu    sync.Mutex
	calls []Call

	// Fail, when set, is consulted before forwarding; a non-nil result is
	// reported as the call's outcome and the inner host is skipped.
	Fail func(Call) error
}

// NewRecorder wraps inner, which may be nil.
func NewRecorder(inner Host) *Recorder {
	return &Recorder{inner: inner}
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Reset forgets recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// Present implements [Host].
func (r *Recorder) Present(req Request, done Done) {
	c := Call{Op: OpPresent, Transition: req.Transition, Origin: req.Origin, Target: req.Destination, Request: req}
	r.forward(c, done, func(d Done) { r.inner.Present(req, d) })
}

// Rewind implements [Host].
func (r *Recorder) Rewind(from screen.Handle, t screen.Transition, done Done) {
	c := Call{Op: OpRewind, Transition: t, Origin: from}
	r.forward(c, done, func(d Done) { r.inner.Rewind(from, t, d) })
}

// Remove implements [Host].
func (r *Recorder) Remove(target screen.Handle, t screen.Transition, done Done) {
	c := Call{Op: OpRemove, Transition: t, Target: target}
	r.forward(c, done, func(d Done) { r.inner.Remove(target, t, d) })
}

func (r *Recorder) forward(c Call, done Done, call func(Done)) {
	r.mu.Lock()
	idx := len(r.calls)
	r.calls = append(r.calls, c)
	r.mu.Unlock()

	finish := func(err error) {
		r.mu.Lock()
		r.calls[idx].Err = err
		r.mu.Unlock()
		done(err)
	}

	if r.Fail != nil {
		if err := r.Fail(c); err != nil {
			finish(err)
			return
		}
	}
	if r.inner == nil {
		finish(nil)
		return
	}
	call(finish)
}

var _ Host = (*Recorder)(nil)
