// Package screen provides the in-memory navigation graph of displayed screens.
//
// The graph is a forest of [Node] values keyed by [ID]. Each node remembers the
// node that caused it to appear ([Node.Parent]), at most one screen reached via a
// major transition ([Node.Next]) and any number of embedded children held in
// numbered slots ([Node.Slots]).
//
// # Transitions
//
// Three transition kinds exist:
//
//	screen.Stack()          // push onto a navigation stack
//	screen.Modal(true)      // present modally, animated
//	screen.Containment(3)   // embed into the region tagged 3
//
// Stack and Modal are "major" transitions and are tracked through the single
// forward link; containment children live in slots and do not touch the forward
// link.
//
// # Store
//
// [Store] is deliberately dumb: Get, Put and Remove with last-write-wins semantics
// and an idempotent Remove. Keeping the graph consistent is the caller's job
// (see the navigator package); [Store.Validate] reports any invariant violation.
//
// Nodes never own the screens they describe. A [Handle] is an opaque registry id
// that only the screen host can resolve.
package screen
