// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends to the engine packages. Consumers register
// hooks at startup to receive events about abstraction builds, batch queries,
// result cache operations, and HTTP requests served by the query API.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// [NewOTelHooks] implements every hook interface on top of OpenTelemetry; the
// command-line tool registers it at startup.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    h := observability.NewOTelHooks()
//	    observability.SetAbstractionHooks(h)
//	    observability.SetBatchHooks(h)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	ctx = observability.Abstraction().OnBuildStart(ctx, len(gates))
//	// ... precompute adjacency ...
//	observability.Abstraction().OnBuildComplete(ctx, len(gates), endpoints, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Abstraction Hooks
// =============================================================================

// AbstractionHooks receives events from netlist abstraction builds.
type AbstractionHooks interface {
	// OnBuildStart is called before the adjacency maps are computed. The
	// returned context is used for the rest of the build.
	OnBuildStart(ctx context.Context, gates int) context.Context

	// OnBuildComplete is called once the build finished or failed.
	OnBuildComplete(ctx context.Context, gates, endpoints int, duration time.Duration, err error)
}

// =============================================================================
// Batch Hooks
// =============================================================================

// BatchHooks receives events from parallel batch queries.
type BatchHooks interface {
	// OnBatchStart is called before the workers start. The returned context
	// is handed to the workers.
	OnBatchStart(ctx context.Context, op string, items, workers int) context.Context

	// OnBatchComplete is called after all workers returned.
	OnBatchComplete(ctx context.Context, op string, items int, duration time.Duration, err error)
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
// Server Hooks
// =============================================================================

// ServerHooks receives events from the HTTP query API.
type ServerHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records the response to a request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopAbstractionHooks is a no-op implementation of AbstractionHooks.
type NoopAbstractionHooks struct{}

func (NoopAbstractionHooks) OnBuildStart(ctx context.Context, _ int) context.Context { return ctx }
func (NoopAbstractionHooks) OnBuildComplete(context.Context, int, int, time.Duration, error) {
}

// NoopBatchHooks is a no-op implementation of BatchHooks.
type NoopBatchHooks struct{}

func (NoopBatchHooks) OnBatchStart(ctx context.Context, _ string, _, _ int) context.Context {
	return ctx
}
func (NoopBatchHooks) OnBatchComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServerHooks is a no-op implementation of ServerHooks.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string)                      {}
func (NoopServerHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	abstractionHooks AbstractionHooks = NoopAbstractionHooks{}
	batchHooks       BatchHooks       = NoopBatchHooks{}
	cacheHooks       CacheHooks       = NoopCacheHooks{}
	serverHooks      ServerHooks      = NoopServerHooks{}
	hooksMu          sync.RWMutex
)

// SetAbstractionHooks registers custom abstraction hooks.
// This should be called once at application startup before any abstraction is built.
func SetAbstractionHooks(h AbstractionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		abstractionHooks = h
	}
}

// SetBatchHooks registers custom batch hooks.
func SetBatchHooks(h BatchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		batchHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetServerHooks registers custom server hooks.
func SetServerHooks(h ServerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		serverHooks = h
	}
}

// Abstraction returns the registered abstraction hooks.
func Abstraction() AbstractionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return abstractionHooks
}

// Batch returns the registered batch hooks.
func Batch() BatchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return batchHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Server returns the registered server hooks.
func Server() ServerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return serverHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	abstractionHooks = NoopAbstractionHooks{}
	batchHooks = NoopBatchHooks{}
	cacheHooks = NoopCacheHooks{}
	serverHooks = NoopServerHooks{}
}
