package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/band-manager/internal/auth"
	"github.com/iliyamo/band-manager/internal/repository"
)

const maxDisplayName = 120

// MemberHandler serves self-service member endpoints.
type MemberHandler struct {
	Users UserStore
	Cache CacheInvalidator
	Log   *zap.Logger
}

func NewMemberHandler(users UserStore, cache CacheInvalidator, log *zap.Logger) *MemberHandler {
	return &MemberHandler{Users: users, Cache: cache, Log: log}
}

type nameReq struct {
	DisplayName string `json:"displayName"`
}

// UpdateName handles PATCH /api/member/name.
func (h *MemberHandler) UpdateName(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthenticated(c)
	}
	var req nameReq
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "invalid body")
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" || utf8.RuneCountInString(name) > maxDisplayName {
		return errJSON(c, http.StatusBadRequest, "displayName must be 1-120 characters")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.UpdateDisplayName(ctx, s.UserID, name); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return errJSON(c, http.StatusNotFound, "user not found")
		}
		h.Log.Error("update display name", zap.Uint64("user_id", s.UserID), zap.Error(err))
		return errJSON(c, http.StatusInternalServerError, "update failed")
	}
	if h.Cache != nil {
		h.Cache.Invalidate(ctx)
	}
	s.DisplayName = name
	return c.JSON(http.StatusOK, echo.Map{"user": s})
}
