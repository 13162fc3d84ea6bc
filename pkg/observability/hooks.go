// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about diagram builds, layout persistence, and session
// activity.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the core packages stay
// free of any observability framework.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetBuildHooks(&myBuildHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Build().OnBuildStart(ctx, tables, refs)
//	// ... build the diagram ...
//	observability.Build().OnBuildComplete(ctx, nodes, edges, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Build Hooks
// =============================================================================

// BuildHooks receives events from the schema-to-diagram builder.
type BuildHooks interface {
	// OnBuildStart records the size of the model about to be built.
	OnBuildStart(ctx context.Context, tables, refs int)

	// OnBuildComplete records the size of the produced graph.
	OnBuildComplete(ctx context.Context, nodes, edges int, duration time.Duration)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from layout persistence.
type StoreHooks interface {
	// OnLoad records a layout read. err is set when the record was unreadable
	// and an empty record was substituted.
	OnLoad(ctx context.Context, backend string, entries int, err error)

	// OnSave records a layout write.
	OnSave(ctx context.Context, backend string, entries int, duration time.Duration, err error)

	// OnPrune records stale identities dropped after a schema change.
	OnPrune(ctx context.Context, removed int)
}

// =============================================================================
// Session Hooks
// =============================================================================

// SessionHooks receives events from interactive preview sessions.
type SessionHooks interface {
	// OnEvent records an inbound session event such as "drag" or "schema".
	OnEvent(ctx context.Context, event string)

	// OnFlush records a coalesced layout write leaving the session.
	OnFlush(ctx context.Context, entries int, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopBuildHooks is a no-op implementation of BuildHooks.
type NoopBuildHooks struct{}

func (NoopBuildHooks) OnBuildStart(context.Context, int, int)                   {}
func (NoopBuildHooks) OnBuildComplete(context.Context, int, int, time.Duration) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLoad(context.Context, string, int, error)                {}
func (NoopStoreHooks) OnSave(context.Context, string, int, time.Duration, error) {}
func (NoopStoreHooks) OnPrune(context.Context, int)                              {}

// NoopSessionHooks is a no-op implementation of SessionHooks.
type NoopSessionHooks struct{}

func (NoopSessionHooks) OnEvent(context.Context, string)     {}
func (NoopSessionHooks) OnFlush(context.Context, int, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	buildHooks   BuildHooks   = NoopBuildHooks{}
	storeHooks   StoreHooks   = NoopStoreHooks{}
	sessionHooks SessionHooks = NoopSessionHooks{}
	hooksMu      sync.RWMutex
)

// SetBuildHooks registers custom build hooks.
// This should be called once at application startup before any builds.
func SetBuildHooks(h BuildHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		buildHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any layout I/O.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetSessionHooks registers custom session hooks.
func SetSessionHooks(h SessionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sessionHooks = h
	}
}

// Build returns the registered build hooks.
func Build() BuildHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return buildHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Session returns the registered session hooks.
func Session() SessionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sessionHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	buildHooks = NoopBuildHooks{}
	storeHooks = NoopStoreHooks{}
	sessionHooks = NoopSessionHooks{}
}
