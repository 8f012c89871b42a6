package navigator

import (
	"context"
	"fmt"
	"io"
	"slices"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/navgraph/pkg/errors"
	"github.com/matzehuels/navgraph/pkg/executor"
	"github.com/matzehuels/navgraph/pkg/graph"
	"github.com/matzehuels/navgraph/pkg/host"
	"github.com/matzehuels/navgraph/pkg/journal"
	"github.com/matzehuels/navgraph/pkg/observability"
	"github.com/matzehuels/navgraph/pkg/screen"
)

const rootHandle screen.Handle = 1

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// fixture drives a navigator against a recording host that accepts every
// call. Handles are allocated per push and mapped back to ids for readable
// assertions.
type fixture struct {
	t       *testing.T
	ctx     context.Context
	nav     *Navigator
	rec     *host.Recorder
	names   map[screen.Handle]screen.ID
	next    screen.Handle
	journal *journal.Memory
	counts  *observability.Counters
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		t:       t,
		ctx:     testContext(t),
		rec:     host.NewRecorder(nil),
		names:   map[screen.Handle]screen.ID{rootHandle: "root"},
		next:    rootHandle,
		journal: journal.NewMemory(0),
		counts:  &observability.Counters{},
	}
	opts = append([]Option{
		WithLogger(quietLogger()),
		WithJournal(f.journal),
		WithHooks(f.counts),
		WithSession("test"),
	}, opts...)
	nav, err := New(rootHandle, "root", f.rec, executor.Inline{}, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = nav.Close(context.Background()) })
	f.nav = nav
	return f
}

func (f *fixture) handle(id screen.ID) screen.Handle {
	f.next++
	f.names[f.next] = id
	return f.next
}

func (f *fixture) push(origin, id screen.ID, tr screen.Transition) {
	f.t.Helper()
	if err := f.nav.Push(f.ctx, origin, f.handle(id), id, tr); err != nil {
		f.t.Fatalf("Push(%s, %s, %s): %v", origin, id, tr, err)
	}
}

// calls flushes the executor and returns the host calls since the last call
// to calls, with handles replaced by ids.
func (f *fixture) calls() []string {
	f.t.Helper()
	if err := f.nav.Flush(f.ctx); err != nil {
		f.t.Fatalf("Flush: %v", err)
	}
	var out []string
	for _, c := range f.rec.Calls() {
		switch c.Op {
		case host.OpPresent:
			out = append(out, fmt.Sprintf("present %s %s->%s", c.Transition, f.names[c.Origin], f.names[c.Target]))
		case host.OpRewind:
			out = append(out, fmt.Sprintf("rewind %s to %s", c.Transition, f.names[c.Origin]))
		case host.OpRemove:
			out = append(out, fmt.Sprintf("remove %s %s", c.Transition, f.names[c.Target]))
		}
	}
	f.rec.Reset()
	return out
}

func (f *fixture) node(id screen.ID) screen.Node {
	f.t.Helper()
	n, ok := f.nav.Node(id)
	if !ok {
		f.t.Fatalf("node %s not tracked", id)
	}
	return n
}

func (f *fixture) assertTracked(want ...screen.ID) {
	f.t.Helper()
	got := f.nav.Snapshot().IDs()
	slices.Sort(want)
	if !slices.Equal(got, want) {
		f.t.Errorf("tracked = %v, want %v", got, want)
	}
	if err := f.nav.Validate(); err != nil {
		f.t.Errorf("Validate: %v", err)
	}
}

func assertCalls(t *testing.T, got []string, want ...string) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Errorf("host calls:\n got %q\nwant %q", got, want)
	}
}

func assertCode(t *testing.T, err error, code errors.Code) {
	t.Helper()
	if !errors.Is(err, code) {
		t.Errorf("err = %v, want %s", err, code)
	}
}

func TestNewRejectsInvalidInput(t *testing.T) {
	rec := host.NewRecorder(nil)
	if _, err := New(rootHandle, "", rec, nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty root id: err = %v", err)
	}
	if _, err := New(rootHandle, "root", nil, nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("nil host: err = %v", err)
	}
}

func TestNewTracksRoot(t *testing.T) {
	f := newFixture(t)
	root := f.node("root")
	if !root.IsRoot() || root.Handle != rootHandle || root.Next != nil {
		t.Errorf("root = %+v", root)
	}
	if f.nav.Root() != "root" || f.nav.Session() != "test" {
		t.Errorf("Root/Session = %s/%s", f.nav.Root(), f.nav.Session())
	}
	f.assertTracked("root")
}

func TestPushStackAndModal(t *testing.T) {
	f := newFixture(t)
	f.push("root", "a", screen.Stack())
	f.push("a", "b", screen.Modal(true))

	a := f.node("a")
	if a.Parent != "root" || a.Next == nil || a.Next.Child != "b" || a.Next.Transition != screen.Modal(true) {
		t.Errorf("a = %+v", a)
	}
	if b := f.node("b"); b.Parent != "a" {
		t.Errorf("b.Parent = %s, want a", b.Parent)
	}
	if got := f.nav.Path(); !slices.Equal(got, []screen.ID{"root", "a", "b"}) {
		t.Errorf("Path = %v", got)
	}

	if err := f.nav.Flush(f.ctx); err != nil {
		t.Fatal(err)
	}
	calls := f.rec.Calls()
	assertCalls(t, f.calls(),
		"present stack root->a",
		"present modal(animated) a->b",
	)
	if req := calls[0].Request; req.Container != host.ContainerNone || req.Presentation != host.PresentationDefault {
		t.Errorf("stack request = %+v", req)
	}
	if req := calls[1].Request; req.Container != host.ContainerNavigation || req.Presentation != host.PresentationOverCurrentContext {
		t.Errorf("modal request = %+v", req)
	}
	f.assertTracked("root", "a", "b")
}

func TestPushOriginNotFound(t *testing.T) {
	f := newFixture(t)
	before := graph.Hash(f.nav.Snapshot())
	err := f.nav.Push(f.ctx, "ghost", f.handle("a"), "a", screen.Stack())
	assertCode(t, err, errors.ErrCodeOriginNotFound)
	if graph.Hash(f.nav.Snapshot()) != before {
		t.Error("graph changed after rejected push")
	}
	assertCalls(t, f.calls())
}

func TestPushInvalidInput(t *testing.T) {
	f := newFixture(t)
	assertCode(t, f.nav.Push(f.ctx, "root", f.handle(""), "", screen.Stack()), errors.ErrCodeInvalidInput)
	assertCode(t, f.nav.Push(f.ctx, "root", f.handle("x"), "x", screen.Transition{Kind: 9}), errors.ErrCodeInvalidInput)
	f.assertTracked("root")
	assertCalls(t, f.calls())
}

func TestPushMajorRewindsExistingLinkFirst(t *testing.T) {
	f := newFixture(t)
	f.push("root", "a", screen.Stack())
	f.push("a", "b", screen.Stack())
	f.push("b", "c", screen.Containment(1))
	f.calls()

	f.push("root", "d", screen.Modal(false))

	assertCalls(t, f.calls(),
		"rewind stack to root",
		"present modal root->d",
	)
	root := f.node("root")
	if root.Next == nil || root.Next.Child != "d" || root.Next.Transition.Kind != screen.KindModal {
		t.Errorf("root.Next = %+v", root.Next)
	}
	f.assertTracked("root", "d")
}

func TestPushSameIDReplacesForwardLink(t *testing.T) {
	f := newFixture(t)
	f.push("root", "a", screen.Stack())
	first := f.node("a").Handle
	f.push("root", "a", screen.Stack())

	if f.node("a").Handle == first {
		t.Error("re-pushed screen should carry the new handle")
	}
	assertCalls(t, f.calls(),
		"present stack root->a",
		"rewind stack to root",
		"present stack root->a",
	)
	f.assertTracked("root", "a")
}

func TestPushDuplicateScreen(t *testing.T) {
	f := newFixture(t)
	f.push("root", "a", screen.Stack())
	f.push("a", "b", screen.Stack())
	f.push("root", "c", screen.Containment(1))
	f.calls()
	before := graph.Hash(f.nav.Snapshot())

	tests := []struct {
		name   string
		origin screen.ID
		id     screen.ID
		tr     screen.Transition
	}{
		{"ancestor", "b", "a", screen.Stack()},
		{"self", "b", "b", screen.Modal(false)},
		{"root", "b", "root", screen.Stack()},
		{"sibling into slot", "b", "c", screen.Containment(2)},
		{"embedded screen as major", "a", "c", screen.Stack()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.nav.Push(f.ctx, tt.origin, f.handle(tt.id), tt.id, tt.tr)
			assertCode(t, err, errors.ErrCodeDuplicateScreen)
		})
	}
	if graph.Hash(f.nav.Snapshot()) != before {
		t.Error("graph changed after rejected pushes")
	}
	assertCalls(t, f.calls())
}

func TestContainmentSameIDIsNoChange(t *testing.T) {
	f := newFixture(t)
	f.push("root", "c", screen.Containment(1))
	f.calls()
	before := graph.Hash(f.nav.Snapshot())

	err := f.nav.Push(f.ctx, "root", f.handle("c"), "c", screen.Containment(1))
	assertCode(t, err, errors.ErrCodeNoChange)
	if !errors.IsNoChange(err) {
		t.Error("IsNoChange should report true")
	}
	if graph.Hash(f.nav.Snapshot()) != before {
		t.Error("graph changed after NO_CHANGE")
	}
	assertCalls(t, f.calls())
}

func TestContainmentReplacementTearsDownOccupant(t *testing.T) {
	f := newFixture(t)
	f.push("root", "c", screen.Containment(1))
	f.push("c", "c1", screen.Stack())
	f.push("c", "c2", screen.Containment(0))
	f.push("root", "keep", screen.Containment(2))
	f.calls()

	f.push("root", "d", screen.Containment(1))

	assertCalls(t, f.calls(),
		"rewind stack to c",
		"remove containment(1) c",
		"present containment(1) root->d",
	)
	root := f.node("root")
	if root.Slots[1] != "d" || root.Slots[2] != "keep" {
		t.Errorf("root.Slots = %v", root.Slots)
	}
	if d := f.node("d"); d.Parent != "root" {
		t.Errorf("d.Parent = %s", d.Parent)
	}
	f.assertTracked("root", "d", "keep")
}

func TestContainmentReplacementWithDescendantID(t *testing.T) {
	f := newFixture(t)
	f.push("root", "c", screen.Containment(1))
	f.push("c", "d", screen.Stack())
	f.calls()

	f.push("root", "d", screen.Containment(1))
	f.assertTracked("root", "d")
	if f.node("d").Parent != "root" {
		t.Error("d should now hang off root")
	}
}

func TestContainmentStaleSlotIsInconsistent(t *testing.T) {
	f := newFixture(t)
	f.nav.store.Put(screen.Node{ID: "root", Handle: rootHandle, Slots: map[int]screen.ID{1: "ghost"}})
	before := graph.Hash(f.nav.Snapshot())

	err := f.nav.Push(f.ctx, "root", f.handle("d"), "d", screen.Containment(1))
	assertCode(t, err, errors.ErrCodeInconsistent)
	if graph.Hash(f.nav.Snapshot()) != before {
		t.Error("graph changed after INCONSISTENT")
	}
	assertCalls(t, f.calls())
}

func TestPopNotFound(t *testing.T) {
	f := newFixture(t)
	f.push("root", "a", screen.Stack())
	f.push("root", "c", screen.Containment(1))
	// "orphan" claims root as parent but root holds no record of it.
	f.nav.store.Put(screen.Node{ID: "orphan", Handle: 99, Parent: "root"})
	// "lost" has a parent that is not tracked.
	f.nav.store.Put(screen.Node{ID: "lost", Handle: 98, Parent: "nowhere"})
	f.calls()
	before := graph.Hash(f.nav.Snapshot())

	for _, id := range []screen.ID{"ghost", "root", "orphan", "lost"} {
		t.Run(string(id), func(t *testing.T) {
			assertCode(t, f.nav.Pop(f.ctx, id), errors.ErrCodeNotFound)
		})
	}
	if graph.Hash(f.nav.Snapshot()) != before {
		t.Error("graph changed after NOT_FOUND")
	}
	assertCalls(t, f.calls())
}

func TestPopNotTopOfStack(t *testing.T) {
	f := newFixture(t)
	f.push("root", "a", screen.Stack())
	f.push("a", "b", screen.Stack())
	f.calls()
	before := graph.Hash(f.nav.Snapshot())

	assertCode(t, f.nav.Pop(f.ctx, "a"), errors.ErrCodeNotTopOfStack)
	if graph.Hash(f.nav.Snapshot()) != before {
		t.Error("graph changed after NOT_TOP_OF_STACK")
	}
	assertCalls(t, f.calls())

	if err := f.nav.Pop(f.ctx, "b"); err != nil {
		t.Fatalf("Pop(b): %v", err)
	}
	if err := f.nav.Pop(f.ctx, "a"); err != nil {
		t.Fatalf("Pop(a): %v", err)
	}
	assertCalls(t, f.calls(),
		"remove stack b",
		"remove stack a",
	)
	f.assertTracked("root")
}

func TestPopTearsDownEverythingReached(t *testing.T) {
	f := newFixture(t)
	f.push("root", "a", screen.Modal(true))
	f.push("a", "b", screen.Stack())
	f.push("b", "b1", screen.Containment(3))
	f.push("a", "c", screen.Containment(1))
	f.push("c", "c1", screen.Modal(false))
	f.calls()

	if err := f.nav.Pop(f.ctx, "a"); err != nil {
		t.Fatalf("Pop: %v", err)
	}
	assertCalls(t, f.calls(),
		"rewind stack to a",
		"remove modal(animated) a",
	)
	if root := f.node("root"); root.Next != nil {
		t.Errorf("root.Next = %+v, want nil", root.Next)
	}
	f.assertTracked("root")

	if s := f.counts.Snapshot(); s.Pops != 1 || s.Trimmed != 5 {
		t.Errorf("counters = %+v", s)
	}
}

func TestPopContainedScreen(t *testing.T) {
	f := newFixture(t)
	f.push("root", "c", screen.Containment(2))
	f.push("root", "a", screen.Stack())
	f.calls()

	if err := f.nav.Pop(f.ctx, "c"); err != nil {
		t.Fatalf("Pop: %v", err)
	}
	assertCalls(t, f.calls(), "remove containment(2) c")
	if root := f.node("root"); len(root.Slots) != 0 || root.Next == nil {
		t.Errorf("root = %+v", root)
	}
	f.assertTracked("root", "a")
}

func TestRewind(t *testing.T) {
	f := newFixture(t)

	assertCode(t, f.nav.Rewind(f.ctx, "ghost"), errors.ErrCodeOriginNotFound)

	if err := f.nav.Rewind(f.ctx, "root"); err != nil {
		t.Fatalf("Rewind without forward link: %v", err)
	}
	assertCalls(t, f.calls())

	f.push("root", "a", screen.Stack())
	f.push("a", "b", screen.Stack())
	f.push("b", "c", screen.Modal(true))
	f.push("b", "e", screen.Containment(1))
	f.push("e", "e1", screen.Stack())
	f.calls()

	if err := f.nav.Rewind(f.ctx, "a"); err != nil {
		t.Fatalf("Rewind: %v", err)
	}
	assertCalls(t, f.calls(), "rewind stack to a")
	if a := f.node("a"); a.Next != nil {
		t.Errorf("a.Next = %+v, want nil", a.Next)
	}
	f.assertTracked("root", "a")
}

// push(R, A, Stack); push(A, B, Modal); rewind(R): both A and B are removed,
// R has no forward link, and the host sees a single stack reversal.
func TestScenarioRewindChain(t *testing.T) {
	f := newFixture(t)
	f.push("root", "A", screen.Stack())
	f.push("A", "B", screen.Modal(true))
	if err := f.nav.Rewind(f.ctx, "root"); err != nil {
		t.Fatalf("Rewind: %v", err)
	}

	assertCalls(t, f.calls(),
		"present stack root->A",
		"present modal(animated) A->B",
		"rewind stack to root",
	)
	if root := f.node("root"); root.Next != nil {
		t.Errorf("root.Next = %+v, want nil", root.Next)
	}
	f.assertTracked("root")
}

// push(R, C, Containment(1)); push(R, D, Containment(1)): C is gone, D sits in
// slot 1, and the host un-embeds C before embedding D.
func TestScenarioContainmentReplacement(t *testing.T) {
	f := newFixture(t)
	f.push("root", "C", screen.Containment(1))
	f.push("root", "D", screen.Containment(1))

	assertCalls(t, f.calls(),
		"present containment(1) root->C",
		"remove containment(1) C",
		"present containment(1) root->D",
	)
	if got := f.node("root").Slots; len(got) != 1 || got[1] != "D" {
		t.Errorf("root.Slots = %v", got)
	}
	f.assertTracked("root", "D")
}

func TestHostFailuresSurfaceOnFlush(t *testing.T) {
	f := newFixture(t)
	f.rec.Fail = func(c host.Call) error {
		if c.Op == host.OpPresent && c.Transition.Kind == screen.KindContainment {
			return errors.HostFailure("embed", host.MsgContainerNotFound)
		}
		return nil
	}

	f.push("root", "c", screen.Containment(7))
	f.push("root", "a", screen.Stack())

	err := f.nav.Flush(f.ctx)
	assertCode(t, err, errors.ErrCodeHostOperationFailed)
	// The graph is not rolled back.
	f.assertTracked("root", "a", "c")

	entries, _ := f.journal.Entries(f.ctx, "test")
	if len(entries) != 2 {
		t.Fatalf("journal entries = %d, want 2", len(entries))
	}
	if !entries[0].Failed() || entries[0].Op != journal.OpPresent || entries[0].Target != "c" {
		t.Errorf("entry[0] = %+v", entries[0])
	}
	if entries[1].Failed() || entries[1].Transition != "stack" || entries[1].Seq <= entries[0].Seq {
		t.Errorf("entry[1] = %+v", entries[1])
	}
}

func TestJournalRecordsEveryJob(t *testing.T) {
	f := newFixture(t)
	f.push("root", "a", screen.Stack())
	f.push("root", "b", screen.Modal(false))
	if err := f.nav.Pop(f.ctx, "b"); err != nil {
		t.Fatal(err)
	}
	f.calls()

	entries, err := f.journal.Entries(f.ctx, "test")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, fmt.Sprintf("%s %s %s->%s", e.Op, e.Transition, e.Origin, e.Target))
	}
	want := []string{
		"present stack root->a",
		"rewind stack root->a",
		"present modal root->b",
		"remove modal root->b",
	}
	if !slices.Equal(got, want) {
		t.Errorf("journal:\n got %q\nwant %q", got, want)
	}
}

func TestClosedNavigatorRejectsOperations(t *testing.T) {
	f := newFixture(t)
	f.push("root", "a", screen.Stack())
	if err := f.nav.Close(f.ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	assertCode(t, f.nav.Push(f.ctx, "root", f.handle("b"), "b", screen.Stack()), errors.ErrCodeClosed)
	assertCode(t, f.nav.Pop(f.ctx, "a"), errors.ErrCodeClosed)
	assertCode(t, f.nav.Rewind(f.ctx, "root"), errors.ErrCodeClosed)
	if len(f.rec.Calls()) != 1 {
		t.Errorf("host calls = %v", f.rec.Calls())
	}
}
