package handler

import (
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"

	"github.com/gin-gonic/gin"
	appmenu "github.com/littlelemon/menu/internal/application/menu"
	"github.com/littlelemon/menu/internal/domain/menu"
	"github.com/littlelemon/menu/internal/domain/shared"
	"github.com/littlelemon/menu/internal/infrastructure/logger"
	"github.com/littlelemon/menu/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// EmptyMenuText is shown when no item is visible
const EmptyMenuText = "The menu is empty"

//go:embed templates/menu.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var menuTemplate = template.Must(template.ParseFS(templateFS, "templates/menu.html"))

// menuPage is the data rendered by templates/menu.html
type menuPage struct {
	Search    string
	Sort      string
	SortLabel string
	ToggleURL string
	StreamURL string
	Items     []appmenu.MenuItemResponse
	EmptyText string
	Name      string
	Price     string
	Error     string
}

// MenuPageHandler serves the single-screen HTML page and its form posts
type MenuPageHandler struct {
	BaseHandler
	service *appmenu.MenuService
	assets  http.FileSystem
}

// NewMenuPageHandler creates a new MenuPageHandler
func NewMenuPageHandler(service *appmenu.MenuService) *MenuPageHandler {
	return &MenuPageHandler{
		service: service,
		assets:  http.FS(staticFS),
	}
}

// RegisterStatic adds the embedded /static assets to g
func (h *MenuPageHandler) RegisterStatic(g *router.DomainGroup) {
	g.GET("/static/*filepath", h.Static)
}

// Static serves an embedded asset
func (h *MenuPageHandler) Static(c *gin.Context) {
	name := path.Join("static", path.Clean("/"+c.Param("filepath")))
	if info, err := fs.Stat(staticFS, name); err != nil || info.IsDir() {
		c.Status(http.StatusNotFound)
		return
	}
	c.FileFromFS(name, h.assets)
}

// Index renders the page for the search and sort in the query
// GET /
func (h *MenuPageHandler) Index(c *gin.Context) {
	query := pageQuery(c)
	h.render(c, http.StatusOK, query, appmenu.CreateMenuItemRequest{}, "")
}

// Create adds an item from the form. Invalid input re-renders the page with
// the inputs kept; success redirects back with the inputs cleared.
// POST /items
func (h *MenuPageHandler) Create(c *gin.Context) {
	query := pageQuery(c)

	var req appmenu.CreateMenuItemRequest
	if err := c.ShouldBind(&req); err != nil {
		h.render(c, http.StatusUnprocessableEntity, query, req, menu.ErrInvalidMenuItem.Message)
		return
	}

	if _, err := h.service.CreateMenuItem(c.Request.Context(), req); err != nil {
		if errors.Is(err, shared.ErrInvalidInput) {
			h.render(c, http.StatusUnprocessableEntity, query, req, menu.ErrInvalidMenuItem.Message)
			return
		}
		h.fail(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, pageURL("/", query))
}

// Delete removes an item and redirects back. An item that is already gone
// counts as deleted.
// POST /items/:id/delete
func (h *MenuPageHandler) Delete(c *gin.Context) {
	query := pageQuery(c)
	id := c.Param("id")

	if err := h.service.DeleteMenuItem(c.Request.Context(), id); err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.fail(c, err)
			return
		}
		logger.GetGinLogger(c).Warn("menu item already deleted", zap.String("id", id))
	}

	c.Redirect(http.StatusSeeOther, pageURL("/", query))
}

func (h *MenuPageHandler) render(c *gin.Context, status int, query ListMenuQuery, input appmenu.CreateMenuItemRequest, message string) {
	state := query.ViewState()
	items, err := h.service.ListMenuItems(c.Request.Context(), state)
	if err != nil {
		h.fail(c, err)
		return
	}

	toggled := query
	toggled.Sort = SortAscending
	if state.SortAscending {
		toggled.Sort = SortDescending
	}

	page := menuPage{
		Search:    query.Search,
		Sort:      query.Sort,
		SortLabel: state.SortLabel(),
		ToggleURL: pageURL("/", toggled),
		StreamURL: pageURL("/menu/stream", query),
		Items:     items,
		EmptyText: EmptyMenuText,
		Name:      input.Name,
		Price:     input.Price,
		Error:     message,
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := menuTemplate.Execute(c.Writer, page); err != nil {
		logger.GetGinLogger(c).Error("failed to render menu page", zap.Error(err))
	}
}

func (h *MenuPageHandler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	logger.GetGinLogger(c).Error("menu page request failed", zap.Error(err))
	c.String(http.StatusInternalServerError, "The menu is unavailable right now")
}

// pageQuery reads search and sort from the URL or the posted form.
// An unknown sort value falls back to the default.
func pageQuery(c *gin.Context) ListMenuQuery {
	query := ListMenuQuery{
		Search: c.Request.FormValue("search"),
		Sort:   c.Request.FormValue("sort"),
	}
	if query.Sort != SortAscending && query.Sort != SortDescending {
		query.Sort = ""
	}
	return query
}

func pageURL(base string, query ListMenuQuery) string {
	values := url.Values{}
	if query.Search != "" {
		values.Set("search", query.Search)
	}
	if query.Sort != "" {
		values.Set("sort", query.Sort)
	}
	if len(values) == 0 {
		return base
	}
	return base + "?" + values.Encode()
}
