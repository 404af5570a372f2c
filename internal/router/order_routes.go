package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/middleware"
)

// RegisterOrders registers the caller's order endpoints.  Any
// authenticated role may book.
func RegisterOrders(g *echo.Group, h *handler.OrderHandler, jwtSecret string) {
	o := g.Group("/orders", middleware.JWTAuth(jwtSecret))
	o.GET("", h.List)
	o.POST("", h.Create)
	o.GET("/:id", h.Get)
	o.PUT("/:id", h.Replace)
	o.DELETE("/:id", h.Delete)
}
