package host

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/navgraph/pkg/errors"
	"github.com/matzehuels/navgraph/pkg/screen"
)

// Screen is the presentable entity managed by a [Simulator].
type Screen struct {
	Name    string
	Regions []int // slot tags this screen can embed children into
}

// view is the simulator's state for one shown screen.
type view struct {
	handle    screen.Handle
	stack     *navStack     // navigation stack the screen lives in
	presented *view         // root of the stack presented modally from here
	presenter *view         // screen that presented this stack root
	embedded  map[int]*view // embedded stack roots by slot
	container *view         // screen this stack root is embedded in
}

type navStack struct {
	views []*view
}

func (s *navStack) indexOf(v *view) int { return slices.Index(s.views, v) }

func (s *navStack) top() *view {
	if len(s.views) == 0 {
		return nil
	}
	return s.views[len(s.views)-1]
}

// Simulator is a headless screen host. It keeps a view hierarchy equivalent to
// a UIKit-style toolkit (navigation stacks, modal presentations, embedded
// regions) and fails the same way a real toolkit would, which makes it usable
// both in tests and as the model behind interactive hosts.
//
// Simulator is safe for concurrent use, although hosts are only ever driven
// from the dispatcher's UI context.
type Simulator struct {
	mu       sync.Mutex
	registry *Registry[*Screen]
	views    map[screen.Handle]*view
	root     *view
}

// NewSimulator creates a simulator whose root screen sits at the bottom of a
// navigation stack. It returns the handle of the root.
func NewSimulator(root *Screen) (*Simulator, screen.Handle) {
	s := &Simulator{
		registry: NewRegistry[*Screen](),
		views:    make(map[screen.Handle]*view),
	}
	h := s.registry.Track(root)
	s.root = s.attach(h, &navStack{})
	return s, h
}

// Registry returns the registry the simulator resolves handles with.
func (s *Simulator) Registry() *Registry[*Screen] { return s.registry }

// Track registers a screen so it can be pushed.
func (s *Simulator) Track(sc *Screen) screen.Handle { return s.registry.Track(sc) }

// Untrack releases a screen that was never shown.
func (s *Simulator) Untrack(h screen.Handle) {
	if !s.Shown(h) {
		s.registry.Release(h)
	}
}

func (s *Simulator) attach(h screen.Handle, stack *navStack) *view {
	v := &view{handle: h, stack: stack, embedded: make(map[int]*view)}
	stack.views = append(stack.views, v)
	s.views[h] = v
	return v
}

// Present implements [Host].
func (s *Simulator) Present(req Request, done Done) {
	done(s.present(req))
}

func (s *Simulator) present(req Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	origin, ok := s.views[req.Origin]
	if !ok {
		return errors.HostFailure("present", MsgUnknownScreen)
	}
	dest, ok := s.registry.Lookup(req.Destination)
	if !ok || dest == nil {
		return errors.HostFailure("present", MsgUnknownScreen)
	}

	switch req.Transition.Kind {
	case screen.KindStack:
		if origin.stack == nil {
			return errors.HostFailure("push", MsgNoStackToPush)
		}
		s.attach(req.Destination, origin.stack)
	case screen.KindModal:
		if origin.presented != nil {
			s.detachTree(origin.presented)
		}
		v := s.attach(req.Destination, &navStack{})
		v.presenter = origin
		origin.presented = v
	case screen.KindContainment:
		owner, _ := s.registry.Lookup(req.Origin)
		if owner == nil || !slices.Contains(owner.Regions, req.Transition.Slot) {
			return errors.HostFailure("embed", MsgContainerNotFound)
		}
		if old := origin.embedded[req.Transition.Slot]; old != nil {
			s.detachTree(old)
		}
		v := s.attach(req.Destination, &navStack{})
		v.container = origin
		origin.embedded[req.Transition.Slot] = v
	default:
		return errors.HostFailure("present", MsgUnknownTransition)
	}
	return nil
}

// Rewind implements [Host].
func (s *Simulator) Rewind(from screen.Handle, t screen.Transition, done Done) {
	done(s.rewind(from, t))
}

func (s *Simulator) rewind(from screen.Handle, t screen.Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[from]
	if !ok {
		return errors.HostFailure("rewind", MsgUnknownScreen)
	}

	switch t.Kind {
	case screen.KindStack:
		if v.stack == nil {
			return errors.HostFailure("pop", MsgNoStackToPop)
		}
		idx := v.stack.indexOf(v)
		for _, above := range slices.Clone(v.stack.views[idx+1:]) {
			s.detachTree(above)
		}
	case screen.KindModal:
		if v.presented == nil {
			return errors.HostFailure("dismiss", MsgNothingPresented)
		}
		s.detachTree(v.presented)
	case screen.KindContainment:
		for _, slot := range slices.Sorted(maps.Keys(v.embedded)) {
			s.detachTree(v.embedded[slot])
		}
	default:
		return errors.HostFailure("rewind", MsgUnknownTransition)
	}
	return nil
}

// Remove implements [Host].
func (s *Simulator) Remove(target screen.Handle, t screen.Transition, done Done) {
	done(s.remove(target, t))
}

func (s *Simulator) remove(target screen.Handle, t screen.Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[target]
	if !ok {
		return errors.HostFailure("remove", MsgUnknownScreen)
	}

	switch t.Kind {
	case screen.KindStack:
		if v.stack == nil {
			return errors.HostFailure("pop", MsgNoStackToPop)
		}
		if v.stack.top() != v || v.presented != nil {
			return errors.HostFailure("pop", MsgNotTopOfStack)
		}
		s.detachTree(v)
	case screen.KindModal:
		if v.presenter == nil {
			return errors.HostFailure("dismiss", MsgNothingPresented)
		}
		s.detachTree(v)
	case screen.KindContainment:
		if v.container == nil {
			return errors.HostFailure("unembed", MsgContainerNotFound)
		}
		s.detachTree(v)
	default:
		return errors.HostFailure("remove", MsgUnknownTransition)
	}
	return nil
}

// detachTree removes v, everything stacked above it, everything it presented
// and everything embedded in those screens. Removed screens are released from
// the registry.
func (s *Simulator) detachTree(v *view) {
	if v.stack != nil {
		if idx := v.stack.indexOf(v); idx >= 0 {
			for _, above := range slices.Clone(v.stack.views[idx+1:]) {
				s.detachTree(above)
			}
			v.stack.views = slices.Delete(v.stack.views, idx, idx+1)
		}
	}
	if v.presented != nil {
		s.detachTree(v.presented)
	}
	for _, slot := range slices.Sorted(maps.Keys(v.embedded)) {
		s.detachTree(v.embedded[slot])
	}
	if v.presenter != nil && v.presenter.presented == v {
		v.presenter.presented = nil
	}
	if v.container != nil {
		for slot, c := range v.container.embedded {
			if c == v {
				delete(v.container.embedded, slot)
			}
		}
	}
	delete(s.views, v.handle)
	s.registry.Release(v.handle)
}

// Shown reports whether h is currently part of the view hierarchy.
func (s *Simulator) Shown(h screen.Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.views[h]
	return ok
}

// Handles returns the handles of every shown screen in ascending order.
func (s *Simulator) Handles() []screen.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.views))
}

// Visible returns the names along the visible path: the top of the root stack,
// then the top of every stack presented on top of it.
func (s *Simulator) Visible() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	v := s.root.stack.top()
	for v != nil {
		out = append(out, s.name(v))
		if v.presented == nil {
			break
		}
		v = v.presented.stack.top()
	}
	return out
}

// Describe renders the view hierarchy as an indented outline.
func (s *Simulator) Describe() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	s.describeStack(&b, s.root.stack, 0, "")
	return b.String()
}

func (s *Simulator) describeStack(b *strings.Builder, st *navStack, depth int, label string) {
	indent := strings.Repeat("  ", depth)
	names := make([]string, len(st.views))
	for i, v := range st.views {
		names[i] = s.name(v)
	}
	fmt.Fprintf(b, "%s%s[%s]\n", indent, label, strings.Join(names, " > "))
	for _, v := range st.views {
		for _, slot := range slices.Sorted(maps.Keys(v.embedded)) {
			s.describeStack(b, v.embedded[slot].stack, depth+1, fmt.Sprintf("%s#%d ", s.name(v), slot))
		}
		if v.presented != nil {
			s.describeStack(b, v.presented.stack, depth+1, fmt.Sprintf("%s^ ", s.name(v)))
		}
	}
}

func (s *Simulator) name(v *view) string {
	if sc, ok := s.registry.Lookup(v.handle); ok && sc != nil && sc.Name != "" {
		return sc.Name
	}
	return fmt.Sprintf("#%d", v.handle)
}

var _ Host = (*Simulator)(nil)
