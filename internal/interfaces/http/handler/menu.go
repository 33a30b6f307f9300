package handler

import (
	"github.com/gin-gonic/gin"
	appmenu "github.com/littlelemon/menu/internal/application/menu"
	"github.com/littlelemon/menu/internal/domain/menu"
	"github.com/littlelemon/menu/internal/interfaces/http/middleware"
)

// Sort query values
const (
	SortAscending  = "asc"
	SortDescending = "desc"
)

// ListMenuQuery selects the visible list
type ListMenuQuery struct {
	Search string `form:"search"`
	Sort   string `form:"sort" binding:"omitempty,oneof=asc desc"`
}

// ViewState converts the query to a view state. Descending is the default.
func (q ListMenuQuery) ViewState() menu.ViewState {
	return menu.ViewState{
		SearchPhrase:  q.Search,
		SortAscending: q.Sort == SortAscending,
	}
}

// ListMenuQueryFromState is the inverse of ViewState
func ListMenuQueryFromState(state menu.ViewState) ListMenuQuery {
	query := ListMenuQuery{Search: state.SearchPhrase, Sort: SortDescending}
	if state.SortAscending {
		query.Sort = SortAscending
	}
	return query
}

// MenuHandler serves the JSON API for menu items
type MenuHandler struct {
	BaseHandler
	service *appmenu.MenuService
	seeder  *appmenu.Seeder
}

// NewMenuHandler creates a new MenuHandler
func NewMenuHandler(service *appmenu.MenuService, seeder *appmenu.Seeder) *MenuHandler {
	return &MenuHandler{
		service: service,
		seeder:  seeder,
	}
}

// List godoc
// @Summary      List menu items
// @Description  List the items whose name contains the search phrase, sorted by name
// @Tags         menu
// @Produce      json
// @Param        search query string false "Case-insensitive name filter"
// @Param        sort   query string false "Name order" Enums(asc, desc) default(desc)
// @Success      200 {object} dto.Response{data=[]appmenu.MenuItemResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /menu/items [get]
func (h *MenuHandler) List(c *gin.Context) {
	var query ListMenuQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	items, err := h.service.ListMenuItems(c.Request.Context(), query.ViewState())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithTotal(c, items, int64(len(items)))
}

// Get godoc
// @Summary      Get menu item
// @Description  Retrieve a menu item by its ID
// @Tags         menu
// @Produce      json
// @Param        id path string true "Menu item ID"
// @Success      200 {object} dto.Response{data=appmenu.MenuItemResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /menu/items/{id} [get]
func (h *MenuHandler) Get(c *gin.Context) {
	item, err := h.service.GetMenuItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// Create godoc
// @Summary      Create menu item
// @Description  Add a menu item. The price is a decimal string with at most 4 fraction digits.
// @Tags         menu
// @Accept       json
// @Produce      json
// @Param        request body appmenu.CreateMenuItemRequest true "Menu item"
// @Success      201 {object} dto.Response{data=appmenu.MenuItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /menu/items [post]
func (h *MenuHandler) Create(c *gin.Context) {
	var req appmenu.CreateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	item, err := h.service.CreateMenuItem(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, item)
}

// Update godoc
// @Summary      Update menu item
// @Description  Replace the name and price of a menu item
// @Tags         menu
// @Accept       json
// @Produce      json
// @Param        id      path string                       true "Menu item ID"
// @Param        request body appmenu.UpdateMenuItemRequest true "New name and price"
// @Success      200 {object} dto.Response{data=appmenu.MenuItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /menu/items/{id} [put]
func (h *MenuHandler) Update(c *gin.Context) {
	var req appmenu.UpdateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	item, err := h.service.UpdateMenuItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// Delete godoc
// @Summary      Delete menu item
// @Description  Remove a menu item by its ID
// @Tags         menu
// @Param        id path string true "Menu item ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /menu/items/{id} [delete]
func (h *MenuHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteMenuItem(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Count godoc
// @Summary      Count menu items
// @Description  Report how many items are stored
// @Tags         menu
// @Produce      json
// @Success      200 {object} dto.Response{data=appmenu.MenuCountResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /menu/items/count [get]
func (h *MenuHandler) Count(c *gin.Context) {
	count, err := h.service.CountMenuItems(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, count)
}

// Seed godoc
// @Summary      Seed the menu
// @Description  Run first-launch seeding: fill an empty store from the remote menu, or the built-in list
// @Tags         menu
// @Produce      json
// @Success      200 {object} dto.Response{data=appmenu.SeedResult}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /menu/seed [post]
func (h *MenuHandler) Seed(c *gin.Context) {
	result, err := h.seeder.Seed(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
