package middleware

// identity.go holds the caller identification shared by the cache and
// rate-limit key builders.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/band-manager/internal/auth"
)

// userKey returns the authenticated user's id as a string, or "guest".
func userKey(c echo.Context) string {
	if s, ok := auth.From(c); ok && s.UserID != 0 {
		return strconv.FormatUint(s.UserID, 10)
	}
	return "guest"
}
