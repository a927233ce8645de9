package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/band-manager/internal/handler"
	"github.com/iliyamo/band-manager/internal/middleware"
	"github.com/iliyamo/band-manager/internal/model"
)

// RegisterAdmin registers the admin dashboard and expense routes.
func RegisterAdmin(e *echo.Echo, d *handler.DashboardHandler, x *handler.ExpenseHandler, g Guards) {
	admin := e.Group("/api", g.Authenticate, middleware.RequireRole(model.RoleAdmin))

	admin.GET("/dashboard/stats", d.AdminStats, g.Cache)
	admin.GET("/expenses", x.List, g.Cache)
	admin.POST("/expenses", x.Create)
}
