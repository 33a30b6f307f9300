package menu

import "context"

// MenuItemRepository defines the persistence contract for menu items.
// Every mutation returns only after the write was acknowledged by the store.
type MenuItemRepository interface {
	// Insert adds one item. Returns shared.ErrAlreadyExists if the id is taken
	Insert(ctx context.Context, item *MenuItem) error

	// InsertMany adds all items in one batch, or none of them
	InsertMany(ctx context.Context, items []MenuItem) error

	// Update replaces name and price of the item with the same id.
	// Returns shared.ErrNotFound if absent
	Update(ctx context.Context, item *MenuItem) error

	// Delete removes the item with the given id.
	// Returns shared.ErrNotFound if absent
	Delete(ctx context.Context, id string) error

	// FindAll returns a snapshot of every stored item
	FindAll(ctx context.Context) ([]MenuItem, error)

	// FindByID returns the item with the given id.
	// Returns shared.ErrNotFound if absent
	FindByID(ctx context.Context, id string) (*MenuItem, error)

	// Count returns the number of stored items
	Count(ctx context.Context) (int64, error)

	// IsEmpty reports whether Count is zero
	IsEmpty(ctx context.Context) (bool, error)

	// ObserveAll emits the full item set once immediately and again after every mutation.
	// The channel is closed when ctx is done
	ObserveAll(ctx context.Context) (<-chan []MenuItem, error)
}
