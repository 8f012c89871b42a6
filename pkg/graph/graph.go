package graph

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/navgraph/pkg/screen"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a node store to JSON bytes.
// Nodes are sorted by ID for deterministic output.
func MarshalGraph(s *screen.Store) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes a node store to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(s *screen.Store, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(s, f)
}

// WriteGraph writes a node store as JSON to an io.Writer.
// Use MarshalGraph for in-memory serialization or WriteGraphFile for files.
func WriteGraph(s *screen.Store, w io.Writer) error {
	return writeGraphTo(s, w)
}

// ReadGraphFile reads a JSON file and returns the decoded store.
// Returns validation errors for graphs that are not a single tree.
func ReadGraphFile(path string) (*screen.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readGraphFrom(f)
}

// ReadGraph decodes a JSON graph from an io.Reader into a store.
// Use ReadGraphFile for files or pass bytes.NewReader for in-memory data.
func ReadGraph(r io.Reader) (*screen.Store, error) {
	return readGraphFrom(r)
}

// Hash returns a SHA-256 fingerprint of the store's serialized form.
// Two stores hash equal exactly when they hold the same nodes and links.
func Hash(s *screen.Store) string {
	data, _ := json.Marshal(FromStore(s))
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeGraphTo(s *screen.Store, w io.Writer) error {
	out := FromStore(s)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readGraphFrom(r io.Reader) (*screen.Store, error) {
	var data Graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToStore(data)
}
