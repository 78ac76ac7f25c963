package tracer

import (
	"context"
	"sync"
)

// ambient is a package-level, mutex-guarded single slot standing
// in for a thread-local "current span context": Go has no per-thread
// storage, so this models the spec's single-owner-at-a-time semantics
// as a process-wide variable instead. It is deliberately not safe for
// two goroutines to share one Scope concurrently; callers are expected
// to treat Scopes the way the spec describes handles on other
// platforms: owned by one logical thread of execution at a time.
var ambient = struct {
	mu  sync.Mutex
	ctx context.Context
}{ctx: context.Background()}

// ambientToken captures the value to restore when a Scope/IsolatedScope
// is released.
type ambientToken struct {
	previous context.Context
	released bool
	mu       sync.Mutex
}

// attachAmbient pushes ctx onto the ambient stack and returns a token
// that restores the previous value on release.
func attachAmbient(ctx context.Context) *ambientToken {
	ambient.mu.Lock()
	previous := ambient.ctx
	ambient.ctx = ctx
	ambient.mu.Unlock()
	return &ambientToken{previous: previous}
}

// release restores the ambient context that was active before the
// corresponding attachAmbient call. It is safe to call more than once;
// only the first call has an effect.
func (t *ambientToken) release() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.released {
		return
	}
	t.released = true
	ambient.mu.Lock()
	ambient.ctx = t.previous
	ambient.mu.Unlock()
}

// currentAmbientContext returns the context.Context currently active
// on the ambient stack.
func currentAmbientContext() context.Context {
	ambient.mu.Lock()
	defer ambient.mu.Unlock()
	return ambient.ctx
}
