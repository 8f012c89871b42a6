package host

import (
	"sync"

	"github.com/matzehuels/navgraph/pkg/screen"
)

// Registry issues [screen.Handle] values for host-owned screens and resolves
// them back. The registry is the only place a handle turns into a screen; the
// navigation graph keeps handles alone.
//
// Registry is safe for concurrent use.
type Registry[T any] struct {
	mu      sync.RWMutex
	next    screen.Handle
	screens map[screen.Handle]T
}

// NewRegistry creates an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{screens: make(map[screen.Handle]T)}
}

// Track registers s and returns its handle. Handles are never reused.
func (r *Registry[T]) Track(s T) screen.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.screens[r.next] = s
	return r.next
}

// Lookup resolves h.
func (r *Registry[T]) Lookup(h screen.Handle) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.screens[h]
	return s, ok
}

// Release forgets h. Releasing an unknown handle is a no-op.
func (r *Registry[T]) Release(h screen.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.screens, h)
}

// Len returns the number of tracked screens.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.screens)
}
