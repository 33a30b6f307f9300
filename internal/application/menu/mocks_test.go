package menu

import (
	"context"
	"sync"
	"time"

	"github.com/littlelemon/menu/internal/domain/menu"
	"github.com/littlelemon/menu/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockMenuItemRepository is a mock implementation of MenuItemRepository
type MockMenuItemRepository struct {
	mock.Mock
}

func (m *MockMenuItemRepository) Insert(ctx context.Context, item *menu.MenuItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockMenuItemRepository) InsertMany(ctx context.Context, items []menu.MenuItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockMenuItemRepository) Update(ctx context.Context, item *menu.MenuItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockMenuItemRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMenuItemRepository) FindAll(ctx context.Context) ([]menu.MenuItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]menu.MenuItem), args.Error(1)
}

func (m *MockMenuItemRepository) FindByID(ctx context.Context, id string) (*menu.MenuItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*menu.MenuItem), args.Error(1)
}

func (m *MockMenuItemRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMenuItemRepository) IsEmpty(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockMenuItemRepository) ObserveAll(ctx context.Context) (<-chan []menu.MenuItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan []menu.MenuItem), args.Error(1)
}

// MockRemoteMenuSource is a mock implementation of RemoteMenuSource
type MockRemoteMenuSource struct {
	mock.Mock
}

func (m *MockRemoteMenuSource) FetchMenu(ctx context.Context) []menu.RemoteMenuItem {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]menu.RemoteMenuItem)
}

// MockSeedGuard is a mock implementation of SeedGuard
type MockSeedGuard struct {
	mock.Mock
}

func (m *MockSeedGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockSeedGuard) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockSeedGuard) Close() error {
	args := m.Called()
	return args.Error(0)
}

// memoryRepository is a small working store for scenario tests
type memoryRepository struct {
	mu    sync.Mutex
	items []menu.MenuItem
}

func (r *memoryRepository) Insert(ctx context.Context, item *menu.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.ID == item.ID {
			return shared.ErrAlreadyExists
		}
	}
	r.items = append(r.items, *item)
	return nil
}

func (r *memoryRepository) InsertMany(ctx context.Context, items []menu.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool, len(r.items)+len(items))
	for _, existing := range r.items {
		seen[existing.ID] = true
	}
	for _, item := range items {
		if seen[item.ID] {
			return shared.ErrAlreadyExists
		}
		seen[item.ID] = true
	}
	r.items = append(r.items, items...)
	return nil
}

func (r *memoryRepository) Update(ctx context.Context, item *menu.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == item.ID {
			r.items[i] = *item
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *memoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *memoryRepository) FindAll(ctx context.Context) ([]menu.MenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]menu.MenuItem(nil), r.items...), nil
}

func (r *memoryRepository) FindByID(ctx context.Context, id string) (*menu.MenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.ID == id {
			found := item
			return &found, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryRepository) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

func (r *memoryRepository) IsEmpty(ctx context.Context) (bool, error) {
	n, err := r.Count(ctx)
	return n == 0, err
}

func (r *memoryRepository) ObserveAll(ctx context.Context) (<-chan []menu.MenuItem, error) {
	items, _ := r.FindAll(ctx)
	ch := make(chan []menu.MenuItem, 1)
	ch <- items
	close(ch)
	return ch, nil
}

var (
	_ menu.MenuItemRepository = (*MockMenuItemRepository)(nil)
	_ menu.MenuItemRepository = (*memoryRepository)(nil)
	_ menu.RemoteMenuSource   = (*MockRemoteMenuSource)(nil)
	_ shared.SeedGuard        = (*MockSeedGuard)(nil)
)
