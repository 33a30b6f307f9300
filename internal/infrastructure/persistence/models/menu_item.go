package models

import (
	"time"

	"github.com/littlelemon/menu/internal/domain/menu"
	"github.com/shopspring/decimal"
)

// MenuItemModel is the persistence model for the MenuItem domain entity.
type MenuItemModel struct {
	ID        string          `gorm:"type:varchar(64);primaryKey"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Price     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MenuItemModel) TableName() string {
	return "menu_items"
}

// ToDomain converts the persistence model to a domain MenuItem.
func (m *MenuItemModel) ToDomain() menu.MenuItem {
	return menu.MenuItem{
		ID:    m.ID,
		Name:  m.Name,
		Price: m.Price,
	}
}

// FromDomain populates the persistence model from a domain MenuItem.
func (m *MenuItemModel) FromDomain(item *menu.MenuItem) {
	m.ID = item.ID
	m.Name = item.Name
	m.Price = item.Price
}

// MenuItemModelFromDomain creates a new persistence model from a domain MenuItem.
func MenuItemModelFromDomain(item *menu.MenuItem) *MenuItemModel {
	m := &MenuItemModel{}
	m.FromDomain(item)
	return m
}
