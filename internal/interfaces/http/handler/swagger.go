package handler

import (
	_ "github.com/littlelemon/menu/docs"
	"github.com/littlelemon/menu/internal/interfaces/http/middleware"
	"github.com/littlelemon/menu/internal/interfaces/http/router"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SwaggerRoutes serves the API documentation UI and doc.json under /swagger
func SwaggerRoutes(cfg middleware.SwaggerConfig) *router.DomainGroup {
	g := router.NewDomainGroup("swagger", "/swagger").
		Use(middleware.SwaggerProtection(cfg))

	g.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return g
}
