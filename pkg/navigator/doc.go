// Package navigator keeps the navigation graph of a running UI and drives a
// screen host from it.
//
// Every screen shown through the navigator is a node in a tree rooted at the
// screen the navigator was created with. A node reaches at most one other
// screen through a major transition (a navigation stack push or a modal
// presentation), recorded as its forward link, and any number of screens
// through containment transitions, recorded by slot.
//
// # Operations
//
//   - [Navigator.Push] shows a screen from an origin. A major push first
//     rewinds whatever the origin showed before; a containment push into an
//     occupied slot tears the occupant down first.
//   - [Navigator.Rewind] removes everything an origin reached through its
//     forward link and reverses it on screen in one step.
//   - [Navigator.Pop] removes one screen along with everything it reached.
//
// The graph is updated synchronously on the caller's goroutine; the matching
// host operations are queued on an [executor.Executor] and performed one at a
// time on the UI context. Host failures never roll the graph back: they are
// logged, journaled, and returned by [Navigator.Flush].
//
// # Usage
//
//	sim, root := host.NewSimulator(&host.Screen{Name: "home"})
//	nav, err := navigator.New(root, "home", sim, executor.Inline{})
//	if err != nil {
//	    return err
//	}
//	defer nav.Close(ctx)
//
//	h := sim.Track(&host.Screen{Name: "settings"})
//	if err := nav.Push(ctx, "home", h, "settings", screen.Stack()); err != nil {
//	    return err
//	}
//	return nav.Flush(ctx)
package navigator
