package cache

import (
	"context"
	"sync"
	"time"

	"github.com/littlelemon/menu/internal/domain/shared"
)

// entry is a held claim with its expiry
type entry struct {
	expiresAt time.Time
}

// InMemorySeedGuard implements shared.SeedGuard with an in-process map.
// It only coordinates goroutines of a single process.
type InMemorySeedGuard struct {
	mu        sync.Mutex
	entries   map[string]entry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemorySeedGuard creates a guard and starts its expiry cleanup goroutine
func NewInMemorySeedGuard() *InMemorySeedGuard {
	return newInMemorySeedGuard(time.Minute)
}

func newInMemorySeedGuard(cleanupInterval time.Duration) *InMemorySeedGuard {
	g := &InMemorySeedGuard{
		entries:  make(map[string]entry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	g.wg.Add(1)
	go g.cleanupLoop(cleanupInterval)

	return g
}

// Acquire claims key for ttl unless an unexpired claim exists
func (g *InMemorySeedGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if e, ok := g.entries[key]; ok && now.Before(e.expiresAt) {
		return false, nil
	}

	g.entries[key] = entry{expiresAt: now.Add(ttl)}
	return true, nil
}

// Release drops the claim on key
func (g *InMemorySeedGuard) Release(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.entries, key)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times
func (g *InMemorySeedGuard) Close() error {
	g.closeOnce.Do(func() {
		close(g.stopChan)
		g.wg.Wait()
	})
	return nil
}

func (g *InMemorySeedGuard) cleanupLoop(interval time.Duration) {
	defer g.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopChan:
			return
		case <-ticker.C:
			g.cleanup()
		}
	}
}

func (g *InMemorySeedGuard) cleanup() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for key, e := range g.entries {
		if !now.Before(e.expiresAt) {
			delete(g.entries, key)
		}
	}
}

// Size returns the number of claims held, expired or not
func (g *InMemorySeedGuard) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}

var _ shared.SeedGuard = (*InMemorySeedGuard)(nil)
