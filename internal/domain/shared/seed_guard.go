package shared

import (
	"context"
	"time"
)

// SeedGuard coordinates one-shot bootstrap work between processes that share a store.
type SeedGuard interface {
	// Acquire claims key for ttl.
	// Returns true if the claim is new, false if another holder still owns it
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release drops the claim so a later run may try again
	Release(ctx context.Context, key string) error

	// Close releases resources held by the guard
	Close() error
}
