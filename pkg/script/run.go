package script

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/navgraph/pkg/errors"
	"github.com/matzehuels/navgraph/pkg/host"
	"github.com/matzehuels/navgraph/pkg/navigator"
	"github.com/matzehuels/navgraph/pkg/screen"
)

// Tracker registers screens with a host and returns their handles.
// [host.Simulator] implements it.
type Tracker interface {
	Track(s *host.Screen) screen.Handle
	Untrack(h screen.Handle)
}

// Result is the outcome of one step.
type Result struct {
	Index int // 1-based
	Step  Step

	// Err is the navigator's answer to the request.
	Err error

	// HostErr holds the host failures reported while executing the step.
	HostErr error
}

// OK reports whether the step was accepted and executed without host failures.
func (r Result) OK() bool { return r.Err == nil && r.HostErr == nil }

// Status returns "ok", the error code of the failure, or "no change".
func (r Result) Status() string {
	switch {
	case errors.IsNoChange(r.Err):
		return "no change"
	case r.Err != nil:
		return string(errors.GetCode(r.Err))
	case r.HostErr != nil:
		return string(errors.GetCode(r.HostErr))
	}
	return "ok"
}

// Run executes the steps of s against nav, registering pushed screens with t.
// Each step is flushed before the next one starts so host failures are
// attributed to the step that caused them.
//
// A NO_CHANGE answer never stops the script. Any other failure stops it
// unless s.ContinueOnError is set; the returned error then wraps the first
// failure.
func Run(ctx context.Context, nav *navigator.Navigator, t Tracker, s *Script) ([]Result, error) {
	var results []Result
	for i, st := range s.Steps {
		if i > 0 && s.StepDelay > 0 {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-time.After(s.StepDelay):
			}
		}

		r := Result{Index: i + 1, Step: st}
		r.Err = apply(ctx, nav, t, st)
		r.HostErr = nav.Flush(ctx)
		results = append(results, r)

		if err := ctx.Err(); err != nil {
			return results, err
		}
		if r.OK() || errors.IsNoChange(r.Err) || s.ContinueOnError {
			continue
		}
		failure := r.Err
		if failure == nil {
			failure = r.HostErr
		}
		return results, fmt.Errorf("step %d (%s): %w", r.Index, st, failure)
	}
	return results, nil
}

func apply(ctx context.Context, nav *navigator.Navigator, t Tracker, st Step) error {
	switch st.Op {
	case OpPush:
		tr, err := st.ParsedTransition()
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScript, err, "transition")
		}
		h := t.Track(&host.Screen{Name: st.ID, Regions: st.Regions})
		if err := nav.Push(ctx, screen.ID(st.Origin), h, screen.ID(st.ID), tr); err != nil {
			t.Untrack(h)
			return err
		}
		return nil
	case OpPop:
		return nav.Pop(ctx, screen.ID(st.ID))
	case OpRewind:
		return nav.Rewind(ctx, screen.ID(st.Origin))
	}
	return errors.New(errors.ErrCodeInvalidScript, "unknown op %q", st.Op)
}
