package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/navgraph/pkg/config"
	"github.com/matzehuels/navgraph/pkg/executor"
	"github.com/matzehuels/navgraph/pkg/host"
	"github.com/matzehuels/navgraph/pkg/journal"
	"github.com/matzehuels/navgraph/pkg/navigator"
	"github.com/matzehuels/navgraph/pkg/observability"
	"github.com/matzehuels/navgraph/pkg/screen"
	"github.com/matzehuels/navgraph/pkg/script"
)

// session is a navigator over a simulated host, set up for one script.
type session struct {
	sim      *host.Simulator
	rec      *host.Recorder
	names    *namingTracker
	nav      *navigator.Navigator
	journal  journal.Journal
	counters *observability.Counters
}

// sessionOptions replaces the recording host and inline dispatcher used by
// default.
type sessionOptions struct {
	wrap       func(*host.Simulator) host.Host
	dispatcher executor.Dispatcher
	logger     *log.Logger
}

// newSession builds a simulator rooted at the script's root screen and a
// navigator driving it. The caller must call close.
func (c *CLI) newSession(ctx context.Context, cfg *config.Config, root *host.Screen, opts sessionOptions) (*session, error) {
	j, err := c.openJournal(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sim, rootHandle := host.NewSimulator(root)
	s := &session{
		sim:      sim,
		rec:      host.NewRecorder(sim),
		names:    newNamingTracker(sim),
		journal:  j,
		counters: &observability.Counters{},
	}
	s.names.remember(rootHandle, root.Name)

	var h host.Host = s.rec
	if opts.wrap != nil {
		h = opts.wrap(sim)
	}
	d := opts.dispatcher
	if d == nil {
		d = executor.Inline{}
	}
	logger := opts.logger
	if logger == nil {
		logger = loggerFromContext(ctx)
	}

	s.nav, err = navigator.New(rootHandle, screen.ID(root.Name), h, d,
		navigator.WithLogger(logger),
		navigator.WithJournal(j),
		navigator.WithHooks(s.counters),
		navigator.WithExecutorOptions(executor.WithHooks(s.counters)),
	)
	if err != nil {
		_ = j.Close()
		return nil, err
	}
	logger.Debug("session started", "session", s.nav.Session(), "root", root.Name)
	return s, nil
}

// rootScreen returns the root screen declared by s.
func rootScreen(s *script.Script) *host.Screen {
	return &host.Screen{Name: s.Root, Regions: s.RootRegions}
}

// close waits for queued transitions and releases the journal.
func (s *session) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	err := s.nav.Close(ctx)
	if jerr := s.journal.Close(); err == nil {
		err = jerr
	}
	return err
}

// describeCall formats a recorded host call with screen names.
func (s *session) describeCall(c host.Call) string {
	var line string
	switch c.Op {
	case host.OpPresent:
		line = fmt.Sprintf("present %s %s -> %s", c.Transition, s.names.name(c.Origin), s.names.name(c.Target))
	case host.OpRewind:
		line = fmt.Sprintf("rewind %s to %s", c.Transition, s.names.name(c.Origin))
	default:
		line = fmt.Sprintf("remove %s %s", c.Transition, s.names.name(c.Target))
	}
	if c.Err != nil {
		line += " (" + c.Err.Error() + ")"
	}
	return line
}

// namingTracker registers screens with the simulator and remembers their
// names after the simulator released them.
type namingTracker struct {
	sim *host.Simulator

	mu    sync.Mutex
	names map[screen.Handle]string
}

func newNamingTracker(sim *host.Simulator) *namingTracker {
	return &namingTracker{sim: sim, names: make(map[screen.Handle]string)}
}

func (t *namingTracker) Track(sc *host.Screen) screen.Handle {
	h := t.sim.Track(sc)
	t.remember(h, sc.Name)
	return h
}

func (t *namingTracker) Untrack(h screen.Handle) {
	t.sim.Untrack(h)
}

func (t *namingTracker) remember(h screen.Handle, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.names[h] = name
}

func (t *namingTracker) name(h screen.Handle) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n, ok := t.names[h]; ok {
		return n
	}
	return fmt.Sprintf("#%d", h)
}

var _ script.Tracker = (*namingTracker)(nil)
