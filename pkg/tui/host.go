// Package tui is an interactive terminal screen host built on bubbletea.
//
// [Host] drives a [host.Simulator] and holds back completion of animated
// transitions for a configurable delay, so queued jobs can be watched as they
// run. [Dispatcher] makes the program's update loop the UI context, and
// [Model] renders the simulated view hierarchy and maps keys to navigation
// requests.
package tui

import (
	"fmt"
	"time"

	"go.uber.org/atomic"

	"github.com/matzehuels/navgraph/pkg/host"
	"github.com/matzehuels/navgraph/pkg/screen"
)

// DefaultAnimation is the completion delay of animated transitions.
const DefaultAnimation = 350 * time.Millisecond

// Host is the terminal screen host.
type Host struct {
	sim      *host.Simulator
	rec      *host.Recorder
	delay    time.Duration
	inFlight atomic.Int64
}

// NewHost wraps sim. A non-positive delay completes every call immediately.
func NewHost(sim *host.Simulator, delay time.Duration) *Host {
	return &Host{sim: sim, rec: host.NewRecorder(sim), delay: delay}
}

// Simulator returns the wrapped simulator.
func (h *Host) Simulator() *host.Simulator { return h.sim }

// Present implements host.Host.
func (h *Host) Present(req host.Request, done host.Done) {
	h.rec.Present(req, h.complete(req.Transition.Animated, done))
}

// Rewind implements host.Host.
func (h *Host) Rewind(from screen.Handle, t screen.Transition, done host.Done) {
	h.rec.Rewind(from, t, h.complete(t.Animated, done))
}

// Remove implements host.Host.
func (h *Host) Remove(target screen.Handle, t screen.Transition, done host.Done) {
	h.rec.Remove(target, t, h.complete(t.Animated, done))
}

func (h *Host) complete(animated bool, done host.Done) host.Done {
	if !animated || h.delay <= 0 {
		return done
	}
	h.inFlight.Inc()
	return func(err error) {
		time.AfterFunc(h.delay, func() {
			h.inFlight.Dec()
			done(err)
		})
	}
}

// Animating reports whether an animated transition is still running.
func (h *Host) Animating() bool { return h.inFlight.Load() > 0 }

// Activity returns the last n host calls, oldest first, with screen names
// resolved where the screen is still tracked.
func (h *Host) Activity(n int) []string {
	calls := h.rec.Calls()
	if n > 0 && len(calls) > n {
		calls = calls[len(calls)-n:]
	}
	out := make([]string, len(calls))
	for i, c := range calls {
		var line string
		switch c.Op {
		case host.OpPresent:
			line = fmt.Sprintf("present %s %s -> %s", c.Transition, h.name(c.Origin), h.name(c.Target))
		case host.OpRewind:
			line = fmt.Sprintf("rewind %s to %s", c.Transition, h.name(c.Origin))
		default:
			line = fmt.Sprintf("remove %s %s", c.Transition, h.name(c.Target))
		}
		if c.Err != nil {
			line += ": " + c.Err.Error()
		}
		out[i] = line
	}
	return out
}

func (h *Host) name(handle screen.Handle) string {
	if sc, ok := h.sim.Registry().Lookup(handle); ok && sc != nil {
		return sc.Name
	}
	return fmt.Sprintf("#%d", handle)
}

var _ host.Host = (*Host)(nil)
