package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/band-manager/internal/auth"
	"github.com/iliyamo/band-manager/internal/handler"
	"github.com/iliyamo/band-manager/internal/middleware"
	"github.com/iliyamo/band-manager/internal/model"
)

// RegisterMember registers the member dashboard and self-service routes.
func RegisterMember(e *echo.Echo, d *handler.DashboardHandler, m *handler.MemberHandler, g Guards) {
	member := e.Group("/api/member", g.Authenticate, middleware.RequireRole(model.RoleMember))

	member.GET("/dashboard", d.MemberDashboard, g.Cache)
	member.PATCH("/name", m.UpdateName, middleware.RequireCapability(auth.CapEditName))
}
