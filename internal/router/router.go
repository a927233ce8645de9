package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/band-manager/internal/auth"
	"github.com/iliyamo/band-manager/internal/handler"
	"github.com/iliyamo/band-manager/internal/middleware"
)

// Guards are the middlewares shared by route groups.
type Guards struct {
	Authenticate echo.MiddlewareFunc // verifies the session; must run first
	Cache        echo.MiddlewareFunc // per-user GET response cache
	LoginLimit   echo.MiddlewareFunc // token bucket for /login
	ResetLimit   echo.MiddlewareFunc // token bucket for /emergency-reset
}

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers login, logout, emergency reset and /me.  Login and
// reset are public but rate limited.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, g Guards) {
	pub := e.Group("/api/auth")
	pub.POST("/login", a.Login, g.LoginLimit)
	pub.POST("/emergency-reset", a.EmergencyReset, g.ResetLimit)

	authed := e.Group("/api/auth", g.Authenticate)
	authed.POST("/logout", a.Logout)
	authed.GET("/me", a.Me)
}

// RegisterShows registers show and directory routes available to every
// signed-in user.  Writes additionally need canAddShows (admins have it).
func RegisterShows(e *echo.Echo, s *handler.ShowHandler, d *handler.DirectoryHandler, g Guards) {
	api := e.Group("/api", g.Authenticate)

	api.GET("/shows", s.List, g.Cache)
	api.GET("/shows/:id", s.Get, g.Cache)
	api.GET("/directory", d.Get, g.Cache)

	write := middleware.RequireCapability(auth.CapAddShows)
	api.POST("/shows", s.Create, write)
	api.PATCH("/shows/:id", s.Update, write)
}
