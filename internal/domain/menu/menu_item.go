package menu

import (
	"strings"
	"unicode/utf8"

	"github.com/littlelemon/menu/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeMenuItem is the aggregate type used in events
const AggregateTypeMenuItem = "MenuItem"

// MaxNameLength bounds the length of a menu item name, in characters
const MaxNameLength = 200

// MaxPriceScale is the number of fraction digits a stored price can hold
const MaxPriceScale = 4

// ErrInvalidMenuItem is returned when a name or price fails validation
var ErrInvalidMenuItem = shared.NewDomainError("INVALID_INPUT", "Invalid name or price values")

// MenuItem is a persisted catalog entry.
// ID is immutable once the item exists.
type MenuItem struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// NewMenuItem creates a validated menu item
func NewMenuItem(id, name string, price decimal.Decimal) (*MenuItem, error) {
	if strings.TrimSpace(id) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Menu item id cannot be empty")
	}
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}

	return &MenuItem{
		ID:    id,
		Name:  name,
		Price: price,
	}, nil
}

// Update replaces the name and price, keeping the id
func (m *MenuItem) Update(name string, price decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}
	if err := validatePrice(price); err != nil {
		return err
	}

	m.Name = name
	m.Price = price
	return nil
}

// PriceDisplay formats the price with two fraction digits
func (m MenuItem) PriceDisplay() string {
	return m.Price.StringFixed(2)
}

// ParsePrice parses user input into a non-negative price.
func ParsePrice(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, shared.NewDomainError("INVALID_INPUT", "Price cannot be empty")
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, shared.NewDomainError("INVALID_INPUT", "Price must be a number")
	}
	if err := validatePrice(price); err != nil {
		return decimal.Zero, err
	}
	return price, nil
}

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "Menu item name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return shared.NewDomainError("INVALID_INPUT", "Menu item name cannot exceed 200 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Price cannot be negative")
	}
	if !price.Equal(price.Truncate(MaxPriceScale)) {
		return shared.NewDomainError("INVALID_INPUT", "Price cannot have more than 4 fraction digits")
	}
	return nil
}
