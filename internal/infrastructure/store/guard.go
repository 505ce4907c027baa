package store

import (
	"context"
	"sync"
	"time"
)

// CaptureGuard is the in-process counterpart of the Redis capture guard: it
// remembers which provider orders are being or have been captured.
type CaptureGuard struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	seen map[string]time.Time
}

// NewCaptureGuard returns a guard whose claims expire after ttl.
func NewCaptureGuard(ttl time.Duration) *CaptureGuard {
	return &CaptureGuard{ttl: ttl, now: time.Now, seen: make(map[string]time.Time)}
}

// Acquire claims id and reports whether the caller is the first to do so.
func (g *CaptureGuard) Acquire(_ context.Context, id string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if exp, ok := g.seen[id]; ok && (g.ttl <= 0 || now.Before(exp)) {
		return false, nil
	}
	g.seen[id] = now.Add(g.ttl)
	return true, nil
}

// Release drops the claim so a failed capture can be retried.
func (g *CaptureGuard) Release(_ context.Context, id string) error {
	g.mu.Lock()
	delete(g.seen, id)
	g.mu.Unlock()
	return nil
}
