package menu

import (
	"github.com/littlelemon/menu/internal/domain/menu"
	"github.com/shopspring/decimal"
)

// CreateMenuItemRequest is the raw user input for a new item.
// Price stays a string so that unparsable input reaches validation.
type CreateMenuItemRequest struct {
	Name  string `json:"name" form:"name" validate:"required,max=200"`
	Price string `json:"price" form:"price" validate:"required"`
}

// UpdateMenuItemRequest replaces the name and price of an existing item
type UpdateMenuItemRequest struct {
	Name  string `json:"name" form:"name" validate:"required,max=200"`
	Price string `json:"price" form:"price" validate:"required"`
}

// MenuItemResponse represents a menu item in API responses
type MenuItemResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price" swaggertype:"string" example:"12.50"`
	PriceDisplay string          `json:"price_display"`
}

// MenuCountResponse reports the size of the store
type MenuCountResponse struct {
	Count int64 `json:"count"`
	Empty bool  `json:"empty"`
}

// ToMenuItemResponse converts a domain item to a response DTO
func ToMenuItemResponse(item menu.MenuItem) MenuItemResponse {
	return MenuItemResponse{
		ID:           item.ID,
		Name:         item.Name,
		Price:        item.Price,
		PriceDisplay: item.PriceDisplay(),
	}
}

// ToMenuItemResponses converts a list of domain items
func ToMenuItemResponses(items []menu.MenuItem) []MenuItemResponse {
	responses := make([]MenuItemResponse, len(items))
	for i, item := range items {
		responses[i] = ToMenuItemResponse(item)
	}
	return responses
}
