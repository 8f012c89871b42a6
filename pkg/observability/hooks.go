// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about graph mutations and transition execution.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks registered globally apply to every navigator and executor that was not
// given its own hooks through an option.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetNavigationHooks(&myNavigationHooks{})
//	    observability.SetExecutorHooks(&myExecutorHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Navigation().OnPush(ctx, origin, id, transition, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Navigation Hooks
// =============================================================================

// NavigationHooks receives events from the graph mutator. Identifiers and
// transitions are passed as strings to keep this package free of domain types.
// err is nil when the request was accepted and the job submitted.
type NavigationHooks interface {
	OnPush(ctx context.Context, origin, id, transition string, err error)
	OnPop(ctx context.Context, id string, trimmed int, err error)
	OnRewind(ctx context.Context, origin string, trimmed int, err error)
}

// =============================================================================
// Executor Hooks
// =============================================================================

// ExecutorHooks receives events from the transition executor.
type ExecutorHooks interface {
	// OnJobStart records a job being handed to the UI context.
	OnJobStart(ctx context.Context, seq uint64, name string)

	// OnJobComplete records the outcome reported by the screen host.
	OnJobComplete(ctx context.Context, seq uint64, name string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopNavigationHooks is a no-op implementation of NavigationHooks.
type NoopNavigationHooks struct{}

func (NoopNavigationHooks) OnPush(context.Context, string, string, string, error) {}
func (NoopNavigationHooks) OnPop(context.Context, string, int, error)             {}
func (NoopNavigationHooks) OnRewind(context.Context, string, int, error)          {}

// NoopExecutorHooks is a no-op implementation of ExecutorHooks.
type NoopExecutorHooks struct{}

func (NoopExecutorHooks) OnJobStart(context.Context, uint64, string) {}
func (NoopExecutorHooks) OnJobComplete(context.Context, uint64, string, time.Duration, error) {
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	navigationHooks NavigationHooks = NoopNavigationHooks{}
	executorHooks   ExecutorHooks   = NoopExecutorHooks{}
	hooksMu         sync.RWMutex
)

// SetNavigationHooks registers custom navigation hooks.
// This should be called once at application startup before any navigation.
func SetNavigationHooks(h NavigationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		navigationHooks = h
	}
}

// SetExecutorHooks registers custom executor hooks.
// This should be called once at application startup before any navigation.
func SetExecutorHooks(h ExecutorHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		executorHooks = h
	}
}

// Navigation returns the registered navigation hooks.
func Navigation() NavigationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return navigationHooks
}

// Executor returns the registered executor hooks.
func Executor() ExecutorHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return executorHooks
}

// Reset restores all hooks to no-op implementations.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	navigationHooks = NoopNavigationHooks{}
	executorHooks = NoopExecutorHooks{}
}
