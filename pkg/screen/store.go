package screen

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	// ErrMissingParent is returned by [Store.Validate] when a non-root node
	// references a parent that is not in the store.
	ErrMissingParent = errors.New("parent not in store")

	// ErrDanglingLink is returned by [Store.Validate] when a forward link or a
	// containment slot references a node that is not in the store, or a node
	// whose Parent does not point back.
	ErrDanglingLink = errors.New("dangling link")

	// ErrCycle is returned by [Store.Validate] when following forward links and
	// slots revisits a node.
	ErrCycle = errors.New("navigation graph contains a cycle")

	// ErrMultipleRoots is returned by [Store.Validate] when more than one node has
	// no parent.
	ErrMultipleRoots = errors.New("more than one root")
)

// Store maps screen identifiers to nodes.
//
// Get and Put copy nodes, so values returned by Get can be modified freely and
// must be written back with Put. Store is not safe for concurrent use.
type Store struct {
	nodes map[ID]Node
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{nodes: make(map[ID]Node)}
}

// Get returns a copy of the node for id.
func (s *Store) Get(id ID) (Node, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.Clone(), true
}

// Has reports whether id is tracked.
func (s *Store) Has(id ID) bool {
	_, ok := s.nodes[id]
	return ok
}

// Put stores a copy of n, replacing any node with the same ID.
func (s *Store) Put(n Node) {
	s.nodes[n.ID] = n.Clone()
}

// Remove deletes id. Removing an absent id is a no-op.
func (s *Store) Remove(id ID) {
	delete(s.nodes, id)
}

// Len returns the number of tracked nodes.
func (s *Store) Len() int { return len(s.nodes) }

// IDs returns all identifiers in sorted order.
func (s *Store) IDs() []ID {
	return slices.Sorted(maps.Keys(s.nodes))
}

// Nodes returns copies of all nodes sorted by ID.
func (s *Store) Nodes() []Node {
	out := make([]Node, 0, len(s.nodes))
	for _, id := range s.IDs() {
		out = append(out, s.nodes[id].Clone())
	}
	return out
}

// Root returns the node without a parent. With an inconsistent store holding
// several roots, the one with the smallest ID wins.
func (s *Store) Root() (Node, bool) {
	for _, id := range s.IDs() {
		if n := s.nodes[id]; n.IsRoot() {
			return n.Clone(), true
		}
	}
	return Node{}, false
}

// Children returns the direct children of id: the forward link target first,
// then slot occupants ordered by slot.
func (s *Store) Children(id ID) []ID {
	n, ok := s.nodes[id]
	if !ok {
		return nil
	}
	var out []ID
	if n.Next != nil {
		out = append(out, n.Next.Child)
	}
	for _, slot := range slices.Sorted(maps.Keys(n.Slots)) {
		out = append(out, n.Slots[slot])
	}
	return out
}

// Ancestors returns the chain of parents of id, nearest first.
// The walk stops at a missing parent or when it would revisit a node.
func (s *Store) Ancestors(id ID) []ID {
	var out []ID
	seen := map[ID]bool{id: true}
	n, ok := s.nodes[id]
	for ok && !n.IsRoot() {
		if seen[n.Parent] {
			break
		}
		seen[n.Parent] = true
		out = append(out, n.Parent)
		n, ok = s.nodes[n.Parent]
	}
	return out
}

// Clone returns an independent copy of the store.
func (s *Store) Clone() *Store {
	out := &Store{nodes: make(map[ID]Node, len(s.nodes))}
	for id, n := range s.nodes {
		out.nodes[id] = n.Clone()
	}
	return out
}

// Validate checks the graph invariants: a single root, every parent present,
// every forward link and slot pointing at a present node whose Parent points
// back, and no cycles.
func (s *Store) Validate() error {
	var roots []string
	for _, id := range s.IDs() {
		n := s.nodes[id]
		if n.IsRoot() {
			roots = append(roots, string(id))
			continue
		}
		if _, ok := s.nodes[n.Parent]; !ok {
			return fmt.Errorf("%w: %s -> %s", ErrMissingParent, id, n.Parent)
		}
	}
	if len(roots) > 1 {
		return fmt.Errorf("%w: %s", ErrMultipleRoots, strings.Join(roots, ", "))
	}

	for _, id := range s.IDs() {
		for _, child := range s.Children(id) {
			c, ok := s.nodes[child]
			if !ok {
				return fmt.Errorf("%w: %s -> %s", ErrDanglingLink, id, child)
			}
			if c.Parent != id {
				return fmt.Errorf("%w: %s -> %s (parent is %q)", ErrDanglingLink, id, child, c.Parent)
			}
		}
	}

	return s.detectCycles()
}

// detectCycles runs a white/gray/black depth-first search over forward links
// and slots.
func (s *Store) detectCycles() error {
	const (
		white = iota
		gray
		black
	)
	color := make(map[ID]int, len(s.nodes))

	var visit func(ID) error
	visit = func(id ID) error {
		color[id] = gray
		for _, child := range s.Children(id) {
			switch color[child] {
			case gray:
				return fmt.Errorf("%w: %s -> %s", ErrCycle, id, child)
			case white:
				if err := visit(child); err != nil {
					return err
				}
			}
		}
		color[id] = black
		return nil
	}

	for _, id := range s.IDs() {
		if color[id] == white {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}
