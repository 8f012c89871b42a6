// Package pkg provides the libraries behind navgraph, a navigation graph
// manager for screen-based applications.
//
// # Overview
//
// An application shows screens by pushing them onto navigation stacks,
// presenting them modally, or embedding them into regions of other screens.
// navgraph tracks every shown screen as a node of a forest, keeps the forward
// transitions between them, and executes the matching on-screen work one job
// at a time, in the order it was requested.
//
//  1. [screen] - Identifiers, transitions, nodes and the node store
//  2. [navigator] - The graph mutator: Push, Pop and Rewind
//  3. [executor] - Serial transition executor and UI dispatchers
//  4. [host] - The screen host interface, a recording host and a simulator
//  5. [journal] - Audit log of executed transitions (memory, file, Redis, MongoDB)
//
// # Architecture
//
//	Push / Pop / Rewind
//	         ↓
//	    [navigator] (validate + mutate the store under one lock)
//	         ↓
//	    [executor] (FIFO, one job at a time, on the UI dispatcher)
//	         ↓
//	    [host] (present, rewind, remove)
//	         ↓
//	    [journal] (one entry per completed job)
//
// # Quick Start
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
//	if err := nav.Flush(ctx); err != nil {
//	    return err // host failures
//	}
//
// # Supporting Packages
//
// [graph] - JSON serialization of the node store.
//
// [render] - Graphviz DOT, SVG, PDF and PNG rendering of the graph.
//
// [inspect] - Read-only HTTP inspector (chi).
//
// [script] - TOML navigation scripts.
//
// [tui] - Interactive terminal host (bubbletea).
//
// [config] - TOML configuration.
//
// [observability] - Hooks for metrics and tracing.
//
// [errors] - Structured error codes.
//
// [buildinfo] - Version information injected at build time.
package pkg
