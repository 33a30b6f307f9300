package menu

import "github.com/littlelemon/menu/internal/domain/shared"

// EventTypeMenuItemsChanged is published after every successful storage mutation
const EventTypeMenuItemsChanged = "MenuItemsChanged"

// Change kinds carried by MenuItemsChangedEvent
const (
	ChangeInserted = "inserted"
	ChangeUpdated  = "updated"
	ChangeDeleted  = "deleted"
)

// MenuItemsChangedEvent signals that the stored item set changed
type MenuItemsChangedEvent struct {
	shared.BaseDomainEvent
	Change  string   `json:"change"`
	ItemIDs []string `json:"item_ids"`
}

// NewMenuItemsChangedEvent creates a change event for the given ids
func NewMenuItemsChangedEvent(change string, ids ...string) *MenuItemsChangedEvent {
	aggID := ""
	if len(ids) == 1 {
		aggID = ids[0]
	}
	return &MenuItemsChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMenuItemsChanged, AggregateTypeMenuItem, aggID),
		Change:          change,
		ItemIDs:         ids,
	}
}
