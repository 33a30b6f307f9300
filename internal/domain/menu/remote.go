package menu

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// RemoteMenuItem is the shape of one entry in the remote menu document
type RemoteMenuItem struct {
	ID    int64           `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
}

// RemoteMenu is the remote document: {"menu": [...]}
type RemoteMenu struct {
	Menu []RemoteMenuItem `json:"menu"`
}

// RemoteMenuSource fetches the remote menu.
// Implementations never fail: any problem yields an empty slice.
type RemoteMenuSource interface {
	FetchMenu(ctx context.Context) []RemoteMenuItem
}

// ToMenuItem converts the remote record into a storable item
func (r RemoteMenuItem) ToMenuItem() MenuItem {
	return MenuItem{
		ID:    strconv.FormatInt(r.ID, 10),
		Name:  strings.TrimSpace(r.Title),
		Price: r.Price,
	}
}

// Validate reports whether the record can be stored as a menu item.
func (r RemoteMenuItem) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("record has no id")
	}
	title := strings.TrimSpace(r.Title)
	if err := validateName(title); err != nil {
		return fmt.Errorf("record %d: %w", r.ID, err)
	}
	if err := validatePrice(r.Price); err != nil {
		return fmt.Errorf("record %d: %w", r.ID, err)
	}
	return nil
}

// ValidateRemoteMenu validates every record and rejects duplicate ids.
// A single bad record invalidates the whole document.
func ValidateRemoteMenu(items []RemoteMenuItem) error {
	seen := make(map[int64]struct{}, len(items))
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("menu[%d]: %w", i, err)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("menu[%d]: duplicate id %d", i, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

// DefaultRemoteMenu is the built-in list used when the remote source yields nothing
func DefaultRemoteMenu() []RemoteMenuItem {
	return []RemoteMenuItem{
		{ID: 1, Title: "Apple", Price: decimal.RequireFromString("1.20")},
		{ID: 2, Title: "Banana", Price: decimal.RequireFromString("2.20")},
	}
}
