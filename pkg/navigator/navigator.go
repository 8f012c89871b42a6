package navigator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/navgraph/pkg/errors"
	"github.com/matzehuels/navgraph/pkg/executor"
	"github.com/matzehuels/navgraph/pkg/host"
	"github.com/matzehuels/navgraph/pkg/journal"
	"github.com/matzehuels/navgraph/pkg/observability"
	"github.com/matzehuels/navgraph/pkg/screen"
)

// journalTimeout bounds a single journal append.
const journalTimeout = 5 * time.Second

// Option configures a Navigator.
type Option func(*Navigator)

// WithLogger sets the logger used by the navigator and its executor.
// Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(n *Navigator) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithHooks overrides the globally registered navigation hooks.
func WithHooks(h observability.NavigationHooks) Option {
	return func(n *Navigator) {
		if h != nil {
			n.hooks = h
		}
	}
}

// WithJournal records every executed transition in j. The navigator does not
// close j.
func WithJournal(j journal.Journal) Option {
	return func(n *Navigator) {
		if j != nil {
			n.journal = j
		}
	}
}

// WithSession sets the journal session id. Defaults to a random id.
func WithSession(id string) Option {
	return func(n *Navigator) {
		n.session = id
	}
}

// WithExecutorOptions passes options to the transition executor.
func WithExecutorOptions(opts ...executor.Option) Option {
	return func(n *Navigator) {
		n.execOpts = append(n.execOpts, opts...)
	}
}

// Navigator owns the navigation graph and the transition executor.
// It is safe for concurrent use: each operation validates, mutates the graph
// and submits its host jobs under one lock, so the host sees jobs in the same
// order the graph was changed.
type Navigator struct {
	host    host.Host
	exec    *executor.Executor
	logger  *log.Logger
	hooks   observability.NavigationHooks
	journal journal.Journal
	session string

	execOpts []executor.Option

	mu     sync.Mutex
	store  *screen.Store
	root   screen.ID
	closed bool
}

// New creates a navigator whose graph holds a single root node for the
// screen rootHandle. Host jobs are handed to d; a nil d runs them inline on
// the executor's worker.
func New(rootHandle screen.Handle, rootID screen.ID, h host.Host, d executor.Dispatcher, opts ...Option) (*Navigator, error) {
	if rootID == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "root screen id must not be empty")
	}
	if h == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "screen host must not be nil")
	}

	n := &Navigator{
		host:    h,
		logger:  log.Default(),
		journal: journal.NewNull(),
		store:   screen.NewStore(),
		root:    rootID,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.hooks == nil {
		n.hooks = observability.Navigation()
	}
	if n.session == "" {
		n.session = journal.NewSession()
	}

	execOpts := append([]executor.Option{executor.WithLogger(n.logger)}, n.execOpts...)
	n.exec = executor.New(d, execOpts...)

	n.store.Put(screen.Node{ID: rootID, Handle: rootHandle})
	n.logger.Debug("navigator ready", "root", rootID, "session", n.session)
	return n, nil
}

// Session returns the journal session id.
func (n *Navigator) Session() string { return n.session }

// Root returns the root screen id.
func (n *Navigator) Root() screen.ID { return n.root }

// Node returns a copy of the node for id.
func (n *Navigator) Node(id screen.ID) (screen.Node, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.store.Get(id)
}

// Snapshot returns an independent copy of the graph.
func (n *Navigator) Snapshot() *screen.Store {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.store.Clone()
}

// Path returns the screens reached from the root by following forward links,
// root first. The last element is the screen on top.
func (n *Navigator) Path() []screen.ID {
	n.mu.Lock()
	defer n.mu.Unlock()

	var out []screen.ID
	seen := make(map[screen.ID]bool)
	node, ok := n.store.Get(n.root)
	for ok && !seen[node.ID] {
		seen[node.ID] = true
		out = append(out, node.ID)
		if node.Next == nil {
			break
		}
		node, ok = n.store.Get(node.Next.Child)
	}
	return out
}

// Validate checks the graph invariants. See [screen.Store.Validate].
func (n *Navigator) Validate() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.store.Validate()
}

// Stats returns the executor counters.
func (n *Navigator) Stats() executor.Stats {
	return n.exec.Stats()
}

// Flush waits until every host job submitted so far has finished and returns
// the host failures reported since the previous Flush.
//
// Flush must not be called from the UI context: jobs waiting to run there
// would never get their turn.
func (n *Navigator) Flush(ctx context.Context) error {
	return n.exec.Flush(ctx)
}

// Close rejects further operations and waits for queued host jobs to finish.
func (n *Navigator) Close(ctx context.Context) error {
	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()
	return n.exec.Close(ctx)
}

// submit queues a host job and journals its outcome once it completed.
// Callers hold n.mu.
func (n *Navigator) submit(e journal.Entry, run func(done host.Done)) {
	name := fmt.Sprintf("%s %s %s", e.Op, e.Transition, e.Target)
	if e.Op == journal.OpRewind {
		name = fmt.Sprintf("%s %s to %s", e.Op, e.Transition, e.Origin)
	}
	e.Session = n.session
	n.exec.Submit(executor.Job{
		Name: name,
		Run: func(done func(error)) {
			run(done)
		},
		After: func(seq uint64, err error) {
			n.record(seq, e, err)
		},
	})
}

func (n *Navigator) record(seq uint64, e journal.Entry, err error) {
	e.Seq = seq
	e.At = time.Now().UTC()
	if err != nil {
		e.Error = err.Error()
	}
	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()
	if jerr := n.journal.Append(ctx, e); jerr != nil {
		n.logger.Warn("journal append failed", "seq", seq, "err", jerr)
	}
}

func errClosed() error {
	return errors.New(errors.ErrCodeClosed, "navigator closed")
}
