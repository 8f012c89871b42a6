package graph

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/navgraph/pkg/screen"
)

// =============================================================================
// Graph - Navigation Graph Serialization
// =============================================================================

// Graph is the canonical serialization format for navigation graphs.
// Used for the inspector API, the CLI, journaling and test fingerprints.
//
// The format is human-readable and designed for round-trip fidelity:
// export → import → export produces identical results.
type Graph struct {
	Root  string `json:"root" bson:"root"`
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// =============================================================================
// Node - Tracked Screen
// =============================================================================

// Node is one tracked screen.
type Node struct {
	ID     string `json:"id" bson:"id"`
	Handle uint64 `json:"handle,omitempty" bson:"handle,omitempty"`
	Parent string `json:"parent,omitempty" bson:"parent,omitempty"`
	Depth  int    `json:"depth,omitempty" bson:"depth,omitempty"` // distance from the root
}

// IsRoot returns true if the node has no parent.
func (n *Node) IsRoot() bool { return n.Parent == "" }

// =============================================================================
// Edge - Recorded Transition
// =============================================================================

// Edge is a transition from a screen to the screen it showed.
type Edge struct {
	From       string `json:"from" bson:"from"`
	To         string `json:"to" bson:"to"`
	Transition string `json:"transition" bson:"transition"`
	Animated   bool   `json:"animated,omitempty" bson:"animated,omitempty"`
	Slot       *int   `json:"slot,omitempty" bson:"slot,omitempty"` // containment only
}

// IsContainment returns true for edges into a containment slot.
func (e *Edge) IsContainment() bool { return e.Slot != nil }

// ToTransition converts the edge back into a screen transition.
func (e *Edge) ToTransition() (screen.Transition, error) {
	kind, err := screen.ParseKind(e.Transition)
	if err != nil {
		return screen.Transition{}, err
	}
	t := screen.Transition{Kind: kind, Animated: e.Animated}
	if kind == screen.KindContainment {
		if e.Slot == nil {
			return screen.Transition{}, fmt.Errorf("containment edge %s→%s has no slot", e.From, e.To)
		}
		t.Slot = *e.Slot
	}
	return t, nil
}

// =============================================================================
// Store ↔ Graph Conversion
// =============================================================================

// FromStore converts a node store to its serialization format.
// Nodes are sorted by ID; edges are grouped by origin in node order, forward
// link first, then slots in ascending order.
func FromStore(s *screen.Store) Graph {
	out := Graph{Nodes: []Node{}, Edges: []Edge{}}
	if root, ok := s.Root(); ok {
		out.Root = string(root.ID)
	}

	for _, n := range s.Nodes() {
		out.Nodes = append(out.Nodes, Node{
			ID:     string(n.ID),
			Handle: uint64(n.Handle),
			Parent: string(n.Parent),
			Depth:  len(s.Ancestors(n.ID)),
		})
		for _, child := range s.Children(n.ID) {
			t, _ := n.TransitionTo(child)
			out.Edges = append(out.Edges, edgeFor(n.ID, child, t))
		}
	}
	return out
}

// ToStore rebuilds a node store from g and validates it.
func ToStore(g Graph) (*screen.Store, error) {
	s := screen.NewStore()
	for _, nj := range g.Nodes {
		if nj.ID == "" {
			return nil, fmt.Errorf("node with empty id")
		}
		if s.Has(screen.ID(nj.ID)) {
			return nil, fmt.Errorf("duplicate node %s", nj.ID)
		}
		s.Put(screen.Node{
			ID:     screen.ID(nj.ID),
			Handle: screen.Handle(nj.Handle),
			Parent: screen.ID(nj.Parent),
		})
	}

	for _, ej := range g.Edges {
		from, ok := s.Get(screen.ID(ej.From))
		if !ok {
			return nil, fmt.Errorf("edge %s→%s: unknown origin", ej.From, ej.To)
		}
		t, err := ej.ToTransition()
		if err != nil {
			return nil, fmt.Errorf("edge %s→%s: %w", ej.From, ej.To, err)
		}
		if t.IsMajor() {
			if from.Next != nil {
				return nil, fmt.Errorf("edge %s→%s: %s already has a forward link", ej.From, ej.To, ej.From)
			}
			from.Next = &screen.Link{Transition: t, Child: screen.ID(ej.To)}
		} else {
			if from.Slots == nil {
				from.Slots = make(map[int]screen.ID)
			}
			from.Slots[t.Slot] = screen.ID(ej.To)
		}
		s.Put(from)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

func edgeFor(from, to screen.ID, t screen.Transition) Edge {
	e := Edge{
		From:       string(from),
		To:         string(to),
		Transition: t.Kind.String(),
		Animated:   t.Animated,
	}
	if t.Kind == screen.KindContainment {
		slot := t.Slot
		e.Slot = &slot
	}
	return e
}
