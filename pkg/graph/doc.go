// Package graph provides the serialization format for navigation graphs.
//
// This package defines the canonical wire format for a navigator's graph,
// used by the inspector API, the CLI and tests that fingerprint a graph.
//
// # Architecture
//
// The package sits at the serialization boundary between the in-memory node
// store and external formats:
//
//   - [Graph], [Node], [Edge]: Serialization types (this package)
//   - pkg/screen.Store: Internal graph representation
//
// Use [FromStore]/[ToStore] to convert between them.
//
// # Graph Serialization
//
// Graphs use a node-link JSON format. Every edge is one recorded transition:
//
//	{
//	  "root": "home",
//	  "nodes": [{"id": "home", "handle": 1}, {"id": "settings", "handle": 2, "parent": "home", "depth": 1}],
//	  "edges": [{"from": "home", "to": "settings", "transition": "stack"}]
//	}
//
// Common operations:
//
//	s, _ := graph.ReadGraphFile("nav.json")    // File → Store
//	graph.WriteGraphFile(store, "nav.json")    // Store → File
//	data, _ := graph.MarshalGraph(store)       // Store → []byte
//	parsed, _ := graph.UnmarshalGraph(data)    // []byte → Graph
//	sum := graph.Hash(store)                   // Store → fingerprint
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
