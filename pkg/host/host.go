// Package host defines the screen host: the collaborator that performs the
// actual show, hide, embed and remove operations for the navigation graph.
//
// Every method of [Host] is invoked on the UI-affinity context chosen by the
// executor's dispatcher and must call done exactly once, possibly later (for
// example when an animation finishes). A nil error reports success; a failure
// message should be wrapped with errors.HostFailure.
//
// Hosts resolve [screen.Handle] values through their own [Registry]; the
// navigation graph never owns a screen.
package host

import (
	"github.com/matzehuels/navgraph/pkg/screen"
)

// Container describes how the destination is wrapped before being shown.
type Container int

const (
	// ContainerNone shows the destination as-is.
	ContainerNone Container = iota
	// ContainerNavigation wraps the destination in a fresh navigation stack.
	ContainerNavigation
)

// Presentation is the modal presentation style requested for a destination.
type Presentation int

const (
	// PresentationDefault leaves the style to the host.
	PresentationDefault Presentation = iota
	// PresentationOverCurrentContext presents over the origin's context,
	// keeping the origin visible underneath.
	PresentationOverCurrentContext
)

// Request describes a forward transition.
type Request struct {
	Transition   screen.Transition
	Origin       screen.Handle
	Destination  screen.Handle
	Container    Container
	Presentation Presentation
}

// ForTransition returns the request for showing destination from origin with
// the wrapping conventions of each kind: modal destinations are wrapped in a
// navigation container presented over the current context, embedded children
// get their own navigation container, stack pushes are shown directly.
func ForTransition(t screen.Transition, origin, destination screen.Handle) Request {
	req := Request{Transition: t, Origin: origin, Destination: destination}
	switch t.Kind {
	case screen.KindModal:
		req.Container = ContainerNavigation
		req.Presentation = PresentationOverCurrentContext
	case screen.KindContainment:
		req.Container = ContainerNavigation
	}
	return req
}

// Done reports the outcome of a host operation.
type Done func(err error)

// Host performs platform-level screen transitions.
type Host interface {
	// Present performs a forward transition described by req.
	Present(req Request, done Done)

	// Rewind undoes the major or containment transition recorded on from:
	// pops the stack back to from, dismisses whatever from presented, or
	// removes from's embedded children.
	Rewind(from screen.Handle, t screen.Transition, done Done)

	// Remove takes target itself off screen, undoing the transition t that
	// showed it.
	Remove(target screen.Handle, t screen.Transition, done Done)
}

// Host failure messages shared by the bundled hosts.
const (
	MsgNoStackToPush     = "no navigation stack to push onto"
	MsgNoStackToPop      = "no navigation stack to pop"
	MsgNothingPresented  = "no presented screen to dismiss"
	MsgContainerNotFound = "container view not found"
	MsgUnknownScreen     = "screen handle not registered"
	MsgNotTopOfStack     = "screen is not at the top of its navigation stack"
	MsgUnknownTransition = "unknown transition kind"
)
