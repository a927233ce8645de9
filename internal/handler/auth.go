package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/band-manager/internal/auth"
	"github.com/iliyamo/band-manager/internal/config"
	"github.com/iliyamo/band-manager/internal/middleware"
	"github.com/iliyamo/band-manager/internal/model"
	"github.com/iliyamo/band-manager/internal/repository"
	"github.com/iliyamo/band-manager/internal/utils"
)

// UserStore is the account persistence used by the auth and member
// handlers.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdatePassword(ctx context.Context, id uint64, hash string) error
	UpdateDisplayName(ctx context.Context, id uint64, name string) error
}

// SessionStore persists issued sessions.
type SessionStore interface {
	Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	Revoke(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    UserStore
	Sessions SessionStore
	Log      *zap.Logger
}

func NewAuthHandler(cfg config.Config, u UserStore, s SessionStore, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s, Log: log}
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type resetReq struct {
	Username    string `json:"username"`
	RecoveryKey string `json:"recoveryKey"`
	NewPassword string `json:"newPassword"`
}

type loginResp struct {
	User    auth.Session `json:"user"`
	Token   string       `json:"token"`
	Expires time.Time    `json:"expires"`
}

// Login verifies credentials, records a new session and returns it both in
// the body and as an HttpOnly cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "invalid body")
	}
	username := repository.NormalizeUsername(req.Username)
	if username == "" || req.Password == "" {
		return errJSON(c, http.StatusBadRequest, "username/password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return errJSON(c, http.StatusUnauthorized, "invalid credentials")
		}
		h.Log.Error("login: load user", zap.Error(err))
		return errJSON(c, http.StatusInternalServerError, "query failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return errJSON(c, http.StatusUnauthorized, "invalid credentials")
	}
	if !u.IsActive {
		return errJSON(c, http.StatusForbidden, "account disabled")
	}

	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.SessionTTL())
	if err != nil {
		h.Log.Error("login: sign token", zap.Error(err))
		return errJSON(c, http.StatusInternalServerError, "issue session failed")
	}
	hash := utils.HashToken(tok.ID)
	if err := h.Sessions.Store(ctx, u.ID, hash, tok.Exp); err != nil {
		h.Log.Error("login: store session", zap.Error(err))
		return errJSON(c, http.StatusInternalServerError, "save session failed")
	}

	c.SetCookie(h.cookie(tok.Token, tok.Exp))
	h.Log.Info("login", zap.Uint64("user_id", u.ID), zap.String("role", u.Role))
	return c.JSON(http.StatusOK, loginResp{
		User:    auth.ForUser(u, hash),
		Token:   tok.Token,
		Expires: tok.Exp,
	})
}

// Logout revokes the current session and clears the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Sessions.Revoke(ctx, s.TokenHash); err != nil {
		h.Log.Error("logout: revoke session", zap.Error(err))
		return errJSON(c, http.StatusInternalServerError, "logout failed")
	}
	c.SetCookie(h.cookie("", time.Unix(0, 0)))
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me returns the caller's session.
func (h *AuthHandler) Me(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthenticated(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": s})
}

// EmergencyReset replaces a user's password when the caller knows the
// recovery key, then revokes every session of that user.  It is disabled
// unless RECOVERY_KEY_HASH is configured.
func (h *AuthHandler) EmergencyReset(c echo.Context) error {
	if h.Cfg.RecoveryKeyHash == "" {
		return errJSON(c, http.StatusNotFound, "not found")
	}
	var req resetReq
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "invalid body")
	}
	username := repository.NormalizeUsername(req.Username)
	if username == "" || req.RecoveryKey == "" {
		return errJSON(c, http.StatusBadRequest, "username/recoveryKey required")
	}
	if err := utils.CheckPassword(req.NewPassword); err != nil {
		return errJSON(c, http.StatusBadRequest, err.Error())
	}
	if !utils.VerifyPassword(h.Cfg.RecoveryKeyHash, req.RecoveryKey) {
		h.Log.Warn("emergency reset: bad recovery key", zap.String("username", username), zap.String("ip", c.RealIP()))
		return errJSON(c, http.StatusUnauthorized, "invalid recovery key")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return errJSON(c, http.StatusNotFound, "user not found")
		}
		h.Log.Error("emergency reset: load user", zap.Error(err))
		return errJSON(c, http.StatusInternalServerError, "query failed")
	}
	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return errJSON(c, http.StatusInternalServerError, "hash failed")
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		h.Log.Error("emergency reset: update password", zap.Error(err))
		return errJSON(c, http.StatusInternalServerError, "update failed")
	}
	if err := h.Sessions.RevokeAllForUser(ctx, u.ID); err != nil {
		h.Log.Error("emergency reset: revoke sessions", zap.Error(err))
		return errJSON(c, http.StatusInternalServerError, "revoke sessions failed")
	}
	h.Log.Warn("emergency reset: password replaced", zap.Uint64("user_id", u.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "password reset"})
}

func (h *AuthHandler) cookie(value string, exp time.Time) *http.Cookie {
	ck := &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		ck.MaxAge = -1
	}
	return ck
}
