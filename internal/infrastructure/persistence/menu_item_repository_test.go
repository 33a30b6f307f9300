package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/littlelemon/menu/internal/domain/menu"
	"github.com/littlelemon/menu/internal/domain/shared"
	"github.com/littlelemon/menu/internal/infrastructure/config"
	"github.com/littlelemon/menu/internal/infrastructure/event"
	"github.com/littlelemon/menu/internal/infrastructure/migration"
	"github.com/littlelemon/menu/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	m, err := migration.New(sqlDB, config.DriverSQLite, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())
	return db
}

func newTestRepository(t *testing.T) *GormMenuItemRepository {
	t.Helper()
	db := newTestDatabase(t)
	repo := NewGormMenuItemRepository(db.DB, event.NewInMemoryEventBus(zap.NewNop()), zap.NewNop())
	t.Cleanup(repo.Close)
	return repo
}

func menuItem(id, name, price string) menu.MenuItem {
	return menu.MenuItem{ID: id, Name: name, Price: decimal.RequireFromString(price)}
}

func receive(t *testing.T, ch <-chan []menu.MenuItem) []menu.MenuItem {
	t.Helper()
	select {
	case items, ok := <-ch:
		require.True(t, ok, "feed closed unexpectedly")
		return items
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func assertNoPending(t *testing.T, ch <-chan []menu.MenuItem) {
	t.Helper()
	select {
	case items := <-ch:
		t.Fatalf("unexpected pending snapshot with %d items", len(items))
	default:
	}
}

func TestGormMenuItemRepository_InsertAndFindAll(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	soup := menuItem("abc", "Soup", "3.50")
	require.NoError(t, repo.Insert(ctx, &soup))

	items, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "abc", items[0].ID)
	assert.Equal(t, "Soup", items[0].Name)
	assert.True(t, decimal.RequireFromString("3.5").Equal(items[0].Price))
	assert.Equal(t, "3.50", items[0].PriceDisplay())

	found, err := repo.FindByID(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "Soup", found.Name)
}

func TestGormMenuItemRepository_InsertDuplicateID(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first := menuItem("abc", "Soup", "3.50")
	require.NoError(t, repo.Insert(ctx, &first))

	dup := menuItem("abc", "Stew", "4.00")
	err := repo.Insert(ctx, &dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	items, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Soup", items[0].Name)
}

func TestGormMenuItemRepository_InsertMany(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.InsertMany(ctx, []menu.MenuItem{
		menuItem("1", "Apple", "1.20"),
		menuItem("2", "Banana", "2.20"),
	}))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, repo.InsertMany(ctx, nil))
}

func TestGormMenuItemRepository_InsertManyIsAllOrNothing(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	existing := menuItem("2", "Banana", "2.20")
	require.NoError(t, repo.Insert(ctx, &existing))

	err := repo.InsertMany(ctx, []menu.MenuItem{
		menuItem("1", "Apple", "1.20"),
		menuItem("2", "Banana", "2.20"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	items, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "2", items[0].ID)
}

func TestGormMenuItemRepository_Update(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	item := menuItem("abc", "Soup", "3.50")
	require.NoError(t, repo.Insert(ctx, &item))

	require.NoError(t, item.Update("Tomato Soup", decimal.RequireFromString("4.25")))
	require.NoError(t, repo.Update(ctx, &item))

	found, err := repo.FindByID(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "Tomato Soup", found.Name)
	assert.Equal(t, "4.25", found.PriceDisplay())

	missing := menuItem("nope", "Ghost", "1")
	assert.ErrorIs(t, repo.Update(ctx, &missing), shared.ErrNotFound)
}

func TestGormMenuItemRepository_Delete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	item := menuItem("abc", "Soup", "3.50")
	require.NoError(t, repo.Insert(ctx, &item))

	require.NoError(t, repo.Delete(ctx, "abc"))
	assert.ErrorIs(t, repo.Delete(ctx, "abc"), shared.ErrNotFound)

	_, err := repo.FindByID(ctx, "abc")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormMenuItemRepository_IsEmpty(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	empty, err := repo.IsEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, empty)

	item := menuItem("abc", "Soup", "3.50")
	require.NoError(t, repo.Insert(ctx, &item))

	empty, err = repo.IsEmpty(ctx)
	require.NoError(t, err)
	assert.False(t, empty)
}

func TestGormMenuItemRepository_ObserveAll(t *testing.T) {
	repo := newTestRepository(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := repo.ObserveAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, receive(t, ch), "initial snapshot of an empty store")

	soup := menuItem("abc", "Soup", "3.50")
	require.NoError(t, repo.Insert(ctx, &soup))
	items := receive(t, ch)
	require.Len(t, items, 1)
	assert.Equal(t, "Soup", items[0].Name)

	require.NoError(t, repo.Delete(ctx, "abc"))
	assert.Empty(t, receive(t, ch))
}

func TestGormMenuItemRepository_ObserveAllKeepsLatestSnapshot(t *testing.T) {
	repo := newTestRepository(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := repo.ObserveAll(ctx)
	require.NoError(t, err)

	for _, id := range []string{"1", "2", "3"} {
		item := menuItem(id, "Item "+id, "1")
		require.NoError(t, repo.Insert(ctx, &item))
	}

	assert.Len(t, receive(t, ch), 3)
	assertNoPending(t, ch)
}

func TestGormMenuItemRepository_ObserveAllStopsOnCancel(t *testing.T) {
	repo := newTestRepository(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := repo.ObserveAll(ctx)
	require.NoError(t, err)
	receive(t, ch)

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, repo.feed.SubscriberCount())
}

func TestGormMenuItemRepository_FailedWriteEmitsNothing(t *testing.T) {
	repo := newTestRepository(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := repo.ObserveAll(ctx)
	require.NoError(t, err)
	receive(t, ch)

	assert.ErrorIs(t, repo.Delete(ctx, "missing"), shared.ErrNotFound)
	assertNoPending(t, ch)
}

func TestMenuItemsSchema_Constraints(t *testing.T) {
	db := newTestDatabase(t)

	tests := []struct {
		name  string
		model models.MenuItemModel
	}{
		{name: "blank name", model: models.MenuItemModel{ID: "1", Name: "  ", Price: decimal.NewFromInt(1)}},
		{name: "negative price", model: models.MenuItemModel{ID: "2", Name: "Soup", Price: decimal.NewFromInt(-3)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := db.DB.Create(&tt.model).Error
			require.Error(t, err)
			assert.Contains(t, err.Error(), "CHECK constraint failed")
		})
	}

	t.Run("fills timestamps", func(t *testing.T) {
		require.NoError(t, db.DB.Exec("INSERT INTO menu_items (id, name, price) VALUES ('3', 'Soup', 2)").Error)

		var stored models.MenuItemModel
		require.NoError(t, db.DB.First(&stored, "id = ?", "3").Error)
		assert.False(t, stored.CreatedAt.IsZero())
		assert.False(t, stored.UpdatedAt.IsZero())
	})
}
