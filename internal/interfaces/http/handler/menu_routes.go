package handler

import "github.com/littlelemon/menu/internal/interfaces/http/router"

// MenuRoutes groups the JSON API under /menu
func MenuRoutes(h *MenuHandler, stream *MenuStreamHandler) *router.DomainGroup {
	g := router.NewDomainGroup("menu", "/menu")

	g.GET("/items", h.List).
		POST("/items", h.Create).
		GET("/items/count", h.Count).
		GET("/items/:id", h.Get).
		PUT("/items/:id", h.Update).
		DELETE("/items/:id", h.Delete).
		POST("/seed", h.Seed).
		GET("/stream", stream.Stream).
		PUT("/stream/:client", stream.UpdateState).
		POST("/stream/:client/toggle", stream.ToggleSort)

	return g
}

// PageRoutes groups the HTML page, its form posts and the live stream at the root
func PageRoutes(page *MenuPageHandler, stream *MenuStreamHandler, health *HealthHandler) *router.DomainGroup {
	g := router.NewDomainGroup("page", "")

	g.GET("/", page.Index).
		POST("/items", page.Create).
		POST("/items/:id/delete", page.Delete).
		GET("/menu/stream", stream.Stream).
		PUT("/menu/stream/:client", stream.UpdateState).
		POST("/menu/stream/:client/toggle", stream.ToggleSort).
		GET("/health", health.Check)

	page.RegisterStatic(g)

	return g
}
