// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about scene behaviors, cache operations, and API calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetBehaviorHooks(&myBehaviorHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Behavior().OnStreamRepaired(group, oldName, newName)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Behavior Hooks
// =============================================================================

// BehaviorHooks receives events from scene behaviors. Behaviors run
// synchronously inside host callbacks, so these hooks carry no context.
type BehaviorHooks interface {
	// OnManifestUpdate records a finished manifest pass.
	OnManifestUpdate(action, result string, rulesChecked int, duration time.Duration)

	// OnObjectInitialized records the initialization of a new manifest object.
	OnObjectInitialized(objectType string)

	// OnStreamRepaired records a stale stream name being replaced.
	OnStreamRepaired(group, oldName, newName string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the API server.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response written for a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopBehaviorHooks is a no-op implementation of BehaviorHooks.
type NoopBehaviorHooks struct{}

func (NoopBehaviorHooks) OnManifestUpdate(string, string, int, time.Duration) {}
func (NoopBehaviorHooks) OnObjectInitialized(string)                         {}
func (NoopBehaviorHooks) OnStreamRepaired(string, string, string)            {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                         {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	behaviorHooks BehaviorHooks = NoopBehaviorHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetBehaviorHooks registers custom behavior hooks.
// This should be called once at application startup before any scene is processed.
func SetBehaviorHooks(h BehaviorHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		behaviorHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Behavior returns the registered behavior hooks.
func Behavior() BehaviorHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return behaviorHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	behaviorHooks = NoopBehaviorHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
