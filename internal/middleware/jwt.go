package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/band-manager/internal/auth"
	"github.com/iliyamo/band-manager/internal/model"
	"github.com/iliyamo/band-manager/internal/repository"
	"github.com/iliyamo/band-manager/internal/utils"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "session"

// SessionValidator resolves a hashed session id to its user.
type SessionValidator interface {
	Validate(ctx context.Context, tokenHash string) (uint64, error)
}

// UserLoader loads the current state of a user.
type UserLoader interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// TokenFromRequest returns the session token from the session cookie or,
// failing that, a Bearer Authorization header.
func TokenFromRequest(c echo.Context) string {
	if ck, err := c.Cookie(SessionCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	if h := c.Request().Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// Authenticate verifies the session token, checks the session has not been
// revoked, reloads the user (so capability changes apply immediately) and
// stores an auth.Session on the context.
func Authenticate(secret string, sessions SessionValidator, users UserLoader, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := TokenFromRequest(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
			}
			claims, err := utils.ParseSessionToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid session"})
			}
			uid, _ := claims.UserID()

			ctx := c.Request().Context()
			hash := utils.HashToken(claims.ID)
			owner, err := sessions.Validate(ctx, hash)
			if err != nil {
				if errors.Is(err, repository.ErrSessionInvalid) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session expired"})
				}
				log.Error("validate session", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session lookup failed"})
			}
			if owner != uid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid session"})
			}

			u, err := users.GetByID(ctx, uid)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid session"})
				}
				log.Error("load session user", zap.Uint64("user_id", uid), zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session lookup failed"})
			}
			if !u.IsActive {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled"})
			}

			auth.Set(c, auth.ForUser(u, hash))
			return next(c)
		}
	}
}
