package menu

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/littlelemon/menu/internal/domain/menu"
	"github.com/littlelemon/menu/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MenuService handles menu item operations
type MenuService struct {
	repo     menu.MenuItemRepository
	validate *validator.Validate
	newID    func() string
}

// NewMenuService creates a new MenuService
func NewMenuService(repo menu.MenuItemRepository) *MenuService {
	return &MenuService{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		newID:    uuid.NewString,
	}
}

// CreateMenuItem validates the input, assigns a random id and stores the item.
// Any validation failure returns menu.ErrInvalidMenuItem.
func (s *MenuService) CreateMenuItem(ctx context.Context, req CreateMenuItemRequest) (*MenuItemResponse, error) {
	name, price, err := s.parseInput(req.Name, req.Price)
	if err != nil {
		return nil, err
	}

	item, err := menu.NewMenuItem(s.newID(), name, price)
	if err != nil {
		return nil, invalidInput(err)
	}

	if err := s.repo.Insert(ctx, item); err != nil {
		return nil, err
	}

	resp := ToMenuItemResponse(*item)
	return &resp, nil
}

// UpdateMenuItem replaces the name and price of the item with id
func (s *MenuService) UpdateMenuItem(ctx context.Context, id string, req UpdateMenuItemRequest) (*MenuItemResponse, error) {
	name, price, err := s.parseInput(req.Name, req.Price)
	if err != nil {
		return nil, err
	}

	item := &menu.MenuItem{ID: id}
	if err := item.Update(name, price); err != nil {
		return nil, invalidInput(err)
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	resp := ToMenuItemResponse(*item)
	return &resp, nil
}

// DeleteMenuItem removes the item with id. Returns shared.ErrNotFound if absent
func (s *MenuService) DeleteMenuItem(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// GetMenuItem returns the item with id. Returns shared.ErrNotFound if absent
func (s *MenuService) GetMenuItem(ctx context.Context, id string) (*MenuItemResponse, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToMenuItemResponse(*item)
	return &resp, nil
}

// ListMenuItems returns the visible list for state
func (s *MenuService) ListMenuItems(ctx context.Context, state menu.ViewState) ([]MenuItemResponse, error) {
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToMenuItemResponses(menu.Derive(items, state)), nil
}

// CountMenuItems reports how many items are stored
func (s *MenuService) CountMenuItems(ctx context.Context) (*MenuCountResponse, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &MenuCountResponse{Count: count, Empty: count == 0}, nil
}

func (s *MenuService) parseInput(rawName, rawPrice string) (string, decimal.Decimal, error) {
	input := CreateMenuItemRequest{
		Name:  strings.TrimSpace(rawName),
		Price: strings.TrimSpace(rawPrice),
	}
	if err := s.validate.Struct(input); err != nil {
		return "", decimal.Zero, invalidInput(err)
	}

	price, err := menu.ParsePrice(input.Price)
	if err != nil {
		return "", decimal.Zero, invalidInput(err)
	}
	return input.Name, price, nil
}

// invalidInput collapses every validation failure into the single
// user-facing error. Storage and other errors pass through unchanged.
func invalidInput(cause error) error {
	var verrs validator.ValidationErrors
	if errors.As(cause, &verrs) || errors.Is(cause, shared.ErrInvalidInput) {
		return menu.ErrInvalidMenuItem
	}
	return cause
}
