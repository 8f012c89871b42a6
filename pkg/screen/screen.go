package screen

import (
	"fmt"
	"maps"

	"github.com/google/uuid"
)

// ID uniquely identifies a tracked screen instance.
// Any non-empty string works; [NewID] mints random ones.
type ID string

// NewID returns a fresh random screen identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

// Handle is a non-owning reference to a presentable screen.
// The zero Handle refers to nothing. Handles are issued and resolved by the
// screen host's registry; the graph only stores and forwards them.
type Handle uint64

// Kind distinguishes the three ways a screen can be shown.
type Kind int

const (
	// KindStack pushes the destination onto the origin's navigation stack.
	KindStack Kind = iota
	// KindModal presents the destination modally over the origin.
	KindModal
	// KindContainment embeds the destination into a tagged region of the origin.
	KindContainment
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindStack:
		return "stack"
	case KindModal:
		return "modal"
	case KindContainment:
		return "containment"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts a kind name back into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "stack", "navstack", "push":
		return KindStack, nil
	case "modal", "present":
		return KindModal, nil
	case "containment", "embed":
		return KindContainment, nil
	}
	return 0, fmt.Errorf("unknown transition kind %q", s)
}

// Transition describes how a screen was shown. It is comparable, so two
// transitions are equal when kind and parameters match.
type Transition struct {
	Kind     Kind
	Animated bool // Modal only
	Slot     int  // Containment only
}

// Stack returns a navigation stack push transition.
func Stack() Transition { return Transition{Kind: KindStack} }

// Modal returns a modal presentation transition.
func Modal(animated bool) Transition { return Transition{Kind: KindModal, Animated: animated} }

// Containment returns an embed transition into the given slot.
func Containment(slot int) Transition { return Transition{Kind: KindContainment, Slot: slot} }

// IsMajor reports whether t is tracked through a node's forward link.
func (t Transition) IsMajor() bool { return t.Kind == KindStack || t.Kind == KindModal }

func (t Transition) String() string {
	switch t.Kind {
	case KindModal:
		if t.Animated {
			return "modal(animated)"
		}
		return "modal"
	case KindContainment:
		return fmt.Sprintf("containment(%d)", t.Slot)
	default:
		return t.Kind.String()
	}
}

// Link is a node's forward link: the single screen reached via a major transition.
type Link struct {
	Transition Transition
	Child      ID
}

// Node is one tracked screen.
//
// The zero value is not usable; ID must be set before storing.
type Node struct {
	ID     ID
	Handle Handle
	Parent ID         // empty only for the root
	Next   *Link      // at most one major-transition child
	Slots  map[int]ID // containment children by slot tag
}

// IsRoot reports whether the node has no parent.
func (n Node) IsRoot() bool { return n.Parent == "" }

// Clone returns a deep copy so the result shares no state with n.
func (n Node) Clone() Node {
	out := n
	if n.Next != nil {
		next := *n.Next
		out.Next = &next
	}
	if n.Slots != nil {
		out.Slots = maps.Clone(n.Slots)
	}
	return out
}

// SlotOf returns the slot holding child, if any.
func (n Node) SlotOf(child ID) (int, bool) {
	for slot, id := range n.Slots {
		if id == child {
			return slot, true
		}
	}
	return 0, false
}

// TransitionTo returns the transition that created child from n: the forward
// link when it targets child, otherwise the containment slot holding it.
func (n Node) TransitionTo(child ID) (Transition, bool) {
	if n.Next != nil && n.Next.Child == child {
		return n.Next.Transition, true
	}
	if slot, ok := n.SlotOf(child); ok {
		return Containment(slot), true
	}
	return Transition{}, false
}
