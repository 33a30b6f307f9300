package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/littlelemon/menu/internal/domain/menu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSource struct {
	mu    sync.Mutex
	items []menu.MenuItem
	err   error
	loads int
}

func (s *stubSource) FindAll(ctx context.Context) ([]menu.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return append([]menu.MenuItem(nil), s.items...), nil
}

func (s *stubSource) set(items ...menu.MenuItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
}

func changed() *menu.MenuItemsChangedEvent {
	return menu.NewMenuItemsChangedEvent(menu.ChangeInserted, "x")
}

func TestMenuItemFeed_SubscribeQueuesCurrentSnapshot(t *testing.T) {
	src := &stubSource{items: []menu.MenuItem{menuItem("1", "Apple", "1.20")}}
	feed := NewMenuItemFeed(src, zap.NewNop())
	defer feed.Close()

	ch, err := feed.Subscribe(context.Background())
	require.NoError(t, err)

	items := receive(t, ch)
	require.Len(t, items, 1)
	assert.Equal(t, "Apple", items[0].Name)
	assert.Equal(t, 1, feed.SubscriberCount())
}

func TestMenuItemFeed_SubscribeSourceError(t *testing.T) {
	src := &stubSource{err: errors.New("db down")}
	feed := NewMenuItemFeed(src, zap.NewNop())

	_, err := feed.Subscribe(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, feed.SubscriberCount())
}

func TestMenuItemFeed_HandleFansOutOneReload(t *testing.T) {
	src := &stubSource{}
	feed := NewMenuItemFeed(src, zap.NewNop())
	defer feed.Close()

	a, err := feed.Subscribe(context.Background())
	require.NoError(t, err)
	b, err := feed.Subscribe(context.Background())
	require.NoError(t, err)
	receive(t, a)
	receive(t, b)

	src.set(menuItem("1", "Apple", "1.20"), menuItem("2", "Banana", "2.20"))
	loadsBefore := src.loads
	require.NoError(t, feed.Handle(context.Background(), changed()))
	assert.Equal(t, loadsBefore+1, src.loads)

	assert.Len(t, receive(t, a), 2)
	assert.Len(t, receive(t, b), 2)
}

func TestMenuItemFeed_HandleWithoutSubscribersSkipsReload(t *testing.T) {
	src := &stubSource{}
	feed := NewMenuItemFeed(src, zap.NewNop())

	require.NoError(t, feed.Handle(context.Background(), changed()))
	assert.Equal(t, 0, src.loads)
}

func TestMenuItemFeed_HandleReloadError(t *testing.T) {
	src := &stubSource{}
	feed := NewMenuItemFeed(src, zap.NewNop())
	defer feed.Close()

	ch, err := feed.Subscribe(context.Background())
	require.NoError(t, err)
	receive(t, ch)

	src.mu.Lock()
	src.err = errors.New("db down")
	src.mu.Unlock()

	err = feed.Handle(context.Background(), changed())
	require.Error(t, err)
	assert.Contains(t, err.Error(), menu.EventTypeMenuItemsChanged)
	assertNoPending(t, ch)
}

func TestMenuItemFeed_SubscribersGetIndependentSlices(t *testing.T) {
	src := &stubSource{}
	feed := NewMenuItemFeed(src, zap.NewNop())
	defer feed.Close()

	a, _ := feed.Subscribe(context.Background())
	b, _ := feed.Subscribe(context.Background())
	receive(t, a)
	receive(t, b)

	src.set(menuItem("1", "Apple", "1.20"))
	require.NoError(t, feed.Handle(context.Background(), changed()))

	first := receive(t, a)
	first[0].Name = "Changed"
	assert.Equal(t, "Apple", receive(t, b)[0].Name)
}

func TestMenuItemFeed_Close(t *testing.T) {
	feed := NewMenuItemFeed(&stubSource{}, zap.NewNop())

	ch, err := feed.Subscribe(context.Background())
	require.NoError(t, err)
	receive(t, ch)

	feed.Close()
	_, ok := <-ch
	assert.False(t, ok)

	_, err = feed.Subscribe(context.Background())
	assert.Error(t, err)
}

func TestMenuItemFeed_CancelRemovesSubscriber(t *testing.T) {
	feed := NewMenuItemFeed(&stubSource{}, zap.NewNop())
	defer feed.Close()

	ctx, cancel := context.WithCancel(context.Background())
	_, err := feed.Subscribe(ctx)
	require.NoError(t, err)

	cancel()
	assert.Eventually(t, func() bool { return feed.SubscriberCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestMenuItemFeed_EventTypes(t *testing.T) {
	feed := NewMenuItemFeed(&stubSource{}, zap.NewNop())
	assert.Equal(t, []string{menu.EventTypeMenuItemsChanged}, feed.EventTypes())
}
