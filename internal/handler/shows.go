package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/band-manager/internal/auth"
	"github.com/iliyamo/band-manager/internal/model"
	"github.com/iliyamo/band-manager/internal/queue"
	"github.com/iliyamo/band-manager/internal/repository"
)

// ShowHandler serves the show endpoints.
type ShowHandler struct {
	Shows  ShowStore
	Events EventPublisher
	Cache  CacheInvalidator
	Log    *zap.Logger
	Loc    *time.Location
	Now    Clock
}

func NewShowHandler(shows ShowStore, events EventPublisher, cache CacheInvalidator, log *zap.Logger, loc *time.Location) *ShowHandler {
	return &ShowHandler{Shows: shows, Events: events, Cache: cache, Log: log, Loc: loc, Now: time.Now}
}

// showInput is the body of POST and PATCH /api/shows.  Absent fields are
// left untouched on PATCH.
type showInput struct {
	Title            *string `json:"title"`
	City             *string `json:"city"`
	ShowType         *string `json:"showType"`
	OrganizationName *string `json:"organizationName"`
	PublicShowFor    *string `json:"publicShowFor"`
	TotalAmount      *int64  `json:"totalAmount"`
	AdvancePayment   *int64  `json:"advancePayment"`
	ShowDate         *string `json:"showDate"`
	Status           *string `json:"status"`
	IsPaid           *bool   `json:"isPaid"`
	Notes            *string `json:"notes"`
	POCName          *string `json:"pocName"`
	POCPhone         *string `json:"pocPhone"`
	POCEmail         *string `json:"pocEmail"`
}

// apply copies the present fields of in onto s and returns the names of
// the fields that changed.  Amounts are ignored unless withAmounts is set.
func (in showInput) apply(s *model.Show, loc *time.Location, withAmounts bool) ([]string, string) {
	var changed []string
	setText := func(name string, dst *string, v *string, transform func(string) string) {
		if v == nil {
			return
		}
		nv := transform(*v)
		if nv != *dst {
			*dst = nv
			changed = append(changed, name)
		}
	}
	setOpt := func(name string, dst **string, v *string) {
		if v == nil {
			return
		}
		nv := optional(v)
		if !sameOptional(*dst, nv) {
			*dst = nv
			changed = append(changed, name)
		}
	}

	setText("title", &s.Title, in.Title, strings.TrimSpace)
	setText("city", &s.City, in.City, strings.TrimSpace)
	setText("showType", &s.ShowType, in.ShowType, model.CanonicalShowType)
	setText("status", &s.Status, in.Status, func(v string) string { return strings.ToLower(strings.TrimSpace(v)) })
	setOpt("organizationName", &s.OrganizationName, in.OrganizationName)
	setOpt("publicShowFor", &s.PublicShowFor, in.PublicShowFor)
	setOpt("notes", &s.Notes, in.Notes)
	setOpt("pocName", &s.POCName, in.POCName)
	setOpt("pocPhone", &s.POCPhone, in.POCPhone)
	setOpt("pocEmail", &s.POCEmail, in.POCEmail)

	if in.ShowDate != nil {
		t, ok := model.ParseShowDate(*in.ShowDate, loc)
		if !ok {
			return nil, "invalid showDate"
		}
		if !t.Equal(s.ShowDate) {
			s.ShowDate = t
			changed = append(changed, "showDate")
		}
	}
	if in.IsPaid != nil && *in.IsPaid != s.IsPaid {
		s.IsPaid = *in.IsPaid
		changed = append(changed, "isPaid")
	}
	if withAmounts {
		if in.TotalAmount != nil && *in.TotalAmount != s.TotalAmount {
			s.TotalAmount = *in.TotalAmount
			changed = append(changed, "totalAmount")
		}
		if in.AdvancePayment != nil && *in.AdvancePayment != s.AdvancePayment {
			s.AdvancePayment = *in.AdvancePayment
			changed = append(changed, "advancePayment")
		}
	}
	return changed, ""
}

func sameOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// List returns every show, latest first.
func (h *ShowHandler) List(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	shows, err := h.Shows.ListAll(ctx)
	if err != nil {
		h.Log.Error("list shows", zap.Error(err))
		return errJSON(c, http.StatusInternalServerError, "failed to load shows")
	}
	return c.JSON(http.StatusOK, echo.Map{"shows": viewShows(shows, s.Capabilities.CanViewAmounts)})
}

// Get returns one show.
func (h *ShowHandler) Get(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthenticated(c)
	}
	id, ok := parseID(c)
	if !ok {
		return errJSON(c, http.StatusBadRequest, "invalid show id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	show, err := h.Shows.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return errJSON(c, http.StatusNotFound, "show not found")
		}
		h.Log.Error("get show", zap.Uint64("show_id", id), zap.Error(err))
		return errJSON(c, http.StatusInternalServerError, "failed to load show")
	}
	return c.JSON(http.StatusOK, viewShow(*show, s.Capabilities.CanViewAmounts))
}

// Create adds a show.  Callers without canViewAmounts cannot set amounts;
// their shows start at zero.
func (h *ShowHandler) Create(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthenticated(c)
	}
	var in showInput
	if err := c.Bind(&in); err != nil {
		return errJSON(c, http.StatusBadRequest, "invalid body")
	}
	show := model.Show{Status: model.StatusUpcoming}
	if _, msg := in.apply(&show, h.Loc, s.Capabilities.CanViewAmounts); msg != "" {
		return errJSON(c, http.StatusBadRequest, msg)
	}
	if err := show.Validate(); err != nil {
		return errJSON(c, http.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Shows.Create(ctx, &show); err != nil {
		h.Log.Error("create show", zap.Error(err))
		return errJSON(c, http.StatusInternalServerError, "failed to create show")
	}
	h.afterWrite(ctx, queue.ActionCreated, show, s, nil)
	return c.JSON(http.StatusCreated, viewShow(show, s.Capabilities.CanViewAmounts))
}

// Update applies a partial edit to a show.
func (h *ShowHandler) Update(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthenticated(c)
	}
	id, ok := parseID(c)
	if !ok {
		return errJSON(c, http.StatusBadRequest, "invalid show id")
	}
	var in showInput
	if err := c.Bind(&in); err != nil {
		return errJSON(c, http.StatusBadRequest, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	current, err := h.Shows.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return errJSON(c, http.StatusNotFound, "show not found")
		}
		h.Log.Error("load show for update", zap.Uint64("show_id", id), zap.Error(err))
		return errJSON(c, http.StatusInternalServerError, "failed to load show")
	}
	show := *current
	changed, msg := in.apply(&show, h.Loc, s.Capabilities.CanViewAmounts)
	if msg != "" {
		return errJSON(c, http.StatusBadRequest, msg)
	}
	if err := show.ValidateUpdate(in.ShowDate != nil); err != nil {
		return errJSON(c, http.StatusBadRequest, err.Error())
	}
	if len(changed) == 0 {
		return errJSON(c, http.StatusConflict, "no changes")
	}

	if err := h.Shows.Update(ctx, &show); err != nil {
		switch {
		case errors.Is(err, repository.ErrNoChange):
			return errJSON(c, http.StatusConflict, "no changes")
		case errors.Is(err, repository.ErrShowNotFound):
			return errJSON(c, http.StatusNotFound, "show not found")
		}
		h.Log.Error("update show", zap.Uint64("show_id", id), zap.Error(err))
		return errJSON(c, http.StatusInternalServerError, "failed to update show")
	}
	if fresh, err := h.Shows.GetByID(ctx, id); err == nil {
		show = *fresh
	}
	h.afterWrite(ctx, queue.ActionUpdated, show, s, changed)
	return c.JSON(http.StatusOK, viewShow(show, s.Capabilities.CanViewAmounts))
}

// afterWrite drops cached views and announces the change.  Failures are
// logged only; the write already succeeded.
func (h *ShowHandler) afterWrite(ctx context.Context, action string, show model.Show, s auth.Session, changed []string) {
	if h.Cache != nil {
		h.Cache.Invalidate(ctx)
	}
	if h.Events == nil {
		return
	}
	ev := queue.NewShowChangedEvent(action, show, s.UserID, s.DisplayName, changed)
	if err := h.Events.PublishShowChanged(ctx, ev); err != nil {
		h.Log.Warn("publish show change", zap.Uint64("show_id", show.ID), zap.Error(err))
	}
}
