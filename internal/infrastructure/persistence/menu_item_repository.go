package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/littlelemon/menu/internal/domain/menu"
	"github.com/littlelemon/menu/internal/domain/shared"
	"github.com/littlelemon/menu/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormMenuItemRepository implements menu.MenuItemRepository using GORM.
// Every successful mutation publishes a MenuItemsChangedEvent, which drives the live feed.
type GormMenuItemRepository struct {
	db     *gorm.DB
	bus    shared.EventBus
	feed   *MenuItemFeed
	logger *zap.Logger
}

// NewGormMenuItemRepository creates a repository and subscribes its live feed to bus
func NewGormMenuItemRepository(db *gorm.DB, bus shared.EventBus, logger *zap.Logger) *GormMenuItemRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &GormMenuItemRepository{
		db:     db,
		bus:    bus,
		logger: logger,
	}
	r.feed = NewMenuItemFeed(r, logger)
	bus.Subscribe(r.feed)
	return r
}

// Insert adds one item
func (r *GormMenuItemRepository) Insert(ctx context.Context, item *menu.MenuItem) error {
	model := models.MenuItemModelFromDomain(item)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateWriteError(item.ID, err)
	}
	r.publish(ctx, menu.ChangeInserted, item.ID)
	return nil
}

// InsertMany adds all items in a single transaction
func (r *GormMenuItemRepository) InsertMany(ctx context.Context, items []menu.MenuItem) error {
	if len(items) == 0 {
		return nil
	}

	rows := make([]*models.MenuItemModel, 0, len(items))
	ids := make([]string, 0, len(items))
	for i := range items {
		rows = append(rows, models.MenuItemModelFromDomain(&items[i]))
		ids = append(ids, items[i].ID)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
	if err != nil {
		return translateWriteError(strings.Join(ids, ","), err)
	}
	r.publish(ctx, menu.ChangeInserted, ids...)
	return nil
}

// Update replaces name and price of an existing item
func (r *GormMenuItemRepository) Update(ctx context.Context, item *menu.MenuItem) error {
	result := r.db.WithContext(ctx).
		Model(&models.MenuItemModel{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"name":  item.Name,
			"price": item.Price,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update menu item %s: %w", item.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	r.publish(ctx, menu.ChangeUpdated, item.ID)
	return nil
}

// Delete removes an item by id
func (r *GormMenuItemRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.MenuItemModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete menu item %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	r.publish(ctx, menu.ChangeDeleted, id)
	return nil
}

// FindAll returns every item in insertion order
func (r *GormMenuItemRepository) FindAll(ctx context.Context) ([]menu.MenuItem, error) {
	var rows []models.MenuItemModel
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load menu items: %w", err)
	}
	items := make([]menu.MenuItem, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].ToDomain())
	}
	return items, nil
}

// FindByID returns one item
func (r *GormMenuItemRepository) FindByID(ctx context.Context, id string) (*menu.MenuItem, error) {
	var row models.MenuItemModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	item := row.ToDomain()
	return &item, nil
}

// Count returns the number of stored items
func (r *GormMenuItemRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.MenuItemModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count menu items: %w", err)
	}
	return count, nil
}

// IsEmpty reports whether no items are stored
func (r *GormMenuItemRepository) IsEmpty(ctx context.Context) (bool, error) {
	count, err := r.Count(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// ObserveAll subscribes to the live item set
func (r *GormMenuItemRepository) ObserveAll(ctx context.Context) (<-chan []menu.MenuItem, error) {
	return r.feed.Subscribe(ctx)
}

// SubscriberCount returns the number of open ObserveAll subscriptions
func (r *GormMenuItemRepository) SubscriberCount() int {
	return r.feed.SubscriberCount()
}

// Close detaches the live feed from the bus and closes every subscription
func (r *GormMenuItemRepository) Close() {
	r.bus.Unsubscribe(r.feed)
	r.feed.Close()
}

// publish notifies the bus after a committed write.
// The request context may already be cancelled by the time subscribers reload.
func (r *GormMenuItemRepository) publish(ctx context.Context, change string, ids ...string) {
	event := menu.NewMenuItemsChangedEvent(change, ids...)
	if err := r.bus.Publish(context.WithoutCancel(ctx), event); err != nil {
		r.logger.Error("failed to publish menu change",
			zap.String("change", change),
			zap.Strings("item_ids", ids),
			zap.Error(err),
		)
	}
}

// translateWriteError maps unique violations to shared.ErrAlreadyExists
func translateWriteError(ids string, err error) error {
	if isDuplicateKey(err) {
		return shared.NewDomainError(shared.ErrAlreadyExists.Code, fmt.Sprintf("menu item %s already exists", ids))
	}
	return fmt.Errorf("failed to insert menu item %s: %w", ids, err)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

var _ menu.MenuItemRepository = (*GormMenuItemRepository)(nil)
