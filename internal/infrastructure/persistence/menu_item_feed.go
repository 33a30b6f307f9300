package persistence

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/littlelemon/menu/internal/domain/menu"
	"github.com/littlelemon/menu/internal/domain/shared"
	"go.uber.org/zap"
)

// snapshotSource loads the full item set
type snapshotSource interface {
	FindAll(ctx context.Context) ([]menu.MenuItem, error)
}

// MenuItemFeed fans the current item set out to live subscribers.
// It handles MenuItemsChangedEvent by reloading the snapshot once and offering
// it to every subscriber. Each subscriber channel holds at most one pending
// snapshot; a newer snapshot replaces an undelivered older one.
type MenuItemFeed struct {
	source snapshotSource
	logger *zap.Logger

	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]chan []menu.MenuItem
	closed bool
}

// NewMenuItemFeed creates a feed over source
func NewMenuItemFeed(source snapshotSource, logger *zap.Logger) *MenuItemFeed {
	return &MenuItemFeed{
		source: source,
		logger: logger,
		subs:   make(map[uint64]chan []menu.MenuItem),
	}
}

// Subscribe registers a subscriber and queues the current snapshot.
// The channel is closed when ctx is done or the feed is closed.
func (f *MenuItemFeed) Subscribe(ctx context.Context) (<-chan []menu.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, fmt.Errorf("menu item feed is closed")
	}

	items, err := f.source.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	ch := make(chan []menu.MenuItem, 1)
	ch <- items
	id := f.nextID
	f.nextID++
	f.subs[id] = ch

	go func() {
		<-ctx.Done()
		f.remove(id)
	}()

	f.logger.Debug("menu feed subscriber added", zap.Uint64("subscriber", id), zap.Int("subscribers", len(f.subs)))
	return ch, nil
}

// Handle implements shared.EventHandler
func (f *MenuItemFeed) Handle(ctx context.Context, event shared.DomainEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.subs) == 0 {
		return nil
	}

	items, err := f.source.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload menu items after %s: %w", event.EventType(), err)
	}
	for _, ch := range f.subs {
		offer(ch, slices.Clone(items))
	}
	return nil
}

// EventTypes implements shared.EventHandler
func (f *MenuItemFeed) EventTypes() []string {
	return []string{menu.EventTypeMenuItemsChanged}
}

// SubscriberCount returns the number of live subscribers
func (f *MenuItemFeed) SubscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Close closes every subscription; later Subscribe calls fail
func (f *MenuItemFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	for id, ch := range f.subs {
		close(ch)
		delete(f.subs, id)
	}
}

func (f *MenuItemFeed) remove(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ch, ok := f.subs[id]; ok {
		close(ch)
		delete(f.subs, id)
	}
}

// offer delivers items, replacing a pending snapshot the subscriber has not read yet.
// Callers hold f.mu, so there is a single sender per channel.
func offer(ch chan []menu.MenuItem, items []menu.MenuItem) {
	select {
	case ch <- items:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- items
}

var _ shared.EventHandler = (*MenuItemFeed)(nil)
