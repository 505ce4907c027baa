package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCaptureTTL = 24 * time.Hour

// CaptureGuard makes payment capture idempotent across processes.
// Key format: capture:<provider_order_id>
type CaptureGuard struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewCaptureGuard creates a CaptureGuard wrapping the given Redis client.
// Claims expire after ttl, or after a day when ttl is not positive.
func NewCaptureGuard(client redis.UniversalClient, ttl time.Duration) *CaptureGuard {
	if ttl <= 0 {
		ttl = defaultCaptureTTL
	}
	return &CaptureGuard{client: client, ttl: ttl}
}

// Acquire claims the provider order and reports whether this caller won.
func (g *CaptureGuard) Acquire(ctx context.Context, providerOrderID string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(providerOrderID), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("capture guard: %w", err)
	}
	return ok, nil
}

// Release drops the claim so a failed capture can be retried.
func (g *CaptureGuard) Release(ctx context.Context, providerOrderID string) error {
	return g.client.Del(ctx, g.key(providerOrderID)).Err()
}

func (g *CaptureGuard) key(providerOrderID string) string {
	return fmt.Sprintf("capture:%s", providerOrderID)
}
