package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Abstraction hooks
	a := NoopAbstractionHooks{}
	if got := a.OnBuildStart(ctx, 10); got != ctx {
		t.Error("OnBuildStart should return the given context")
	}
	a.OnBuildComplete(ctx, 10, 42, time.Second, nil)

	// Batch hooks
	b := NoopBatchHooks{}
	if got := b.OnBatchStart(ctx, "sequential", 100, 4); got != ctx {
		t.Error("OnBatchStart should return the given context")
	}
	b.OnBatchComplete(ctx, "sequential", 100, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "seqmap")
	c.OnCacheMiss(ctx, "seqmap")
	c.OnCacheSet(ctx, "seqmap", 1024)

	// Server hooks
	s := NoopServerHooks{}
	s.OnRequest(ctx, "GET", "/gates/{id}")
	s.OnResponse(ctx, "GET", "/gates/{id}", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Abstraction().(NoopAbstractionHooks); !ok {
		t.Error("Abstraction() should return NoopAbstractionHooks by default")
	}
	if _, ok := Batch().(NoopBatchHooks); !ok {
		t.Error("Batch() should return NoopBatchHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Server().(NoopServerHooks); !ok {
		t.Error("Server() should return NoopServerHooks by default")
	}

	customAbstraction := &testAbstractionHooks{}
	SetAbstractionHooks(customAbstraction)
	if Abstraction() != customAbstraction {
		t.Error("SetAbstractionHooks should set custom hooks")
	}

	customBatch := &testBatchHooks{}
	SetBatchHooks(customBatch)
	if Batch() != customBatch {
		t.Error("SetBatchHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customServer := &testServerHooks{}
	SetServerHooks(customServer)
	if Server() != customServer {
		t.Error("SetServerHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Abstraction().(NoopAbstractionHooks); !ok {
		t.Error("Reset() should restore NoopAbstractionHooks")
	}
	if _, ok := Server().(NoopServerHooks); !ok {
		t.Error("Reset() should restore NoopServerHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testBatchHooks{}
	SetBatchHooks(custom)

	// Setting nil should be ignored
	SetBatchHooks(nil)

	if Batch() != custom {
		t.Error("SetBatchHooks(nil) should be ignored")
	}

	Reset()
}

func TestOTelHooksWithoutSDK(t *testing.T) {
	ctx := context.Background()
	h := NewOTelHooks()

	bctx := h.OnBuildStart(ctx, 3)
	h.OnBuildComplete(bctx, 3, 9, time.Millisecond, nil)

	bctx = h.OnBatchStart(ctx, "sequential", 5, 2)
	h.OnBatchComplete(bctx, "sequential", 5, time.Millisecond, errors.New("boom"))

	h.OnCacheHit(ctx, "seqmap")
	h.OnCacheMiss(ctx, "seqmap")
	h.OnCacheSet(ctx, "seqmap", 128)
	h.OnRequest(ctx, "GET", "/healthz")
	h.OnResponse(ctx, "GET", "/healthz", 200, time.Millisecond)

	if err := h.initMetrics(); err != nil {
		t.Errorf("initMetrics() = %v, want nil with the no-op provider", err)
	}
}

// Test implementations
type testAbstractionHooks struct{ NoopAbstractionHooks }
type testBatchHooks struct{ NoopBatchHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testServerHooks struct{ NoopServerHooks }
