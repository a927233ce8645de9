package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/band-manager/internal/directory"
	"github.com/iliyamo/band-manager/internal/model"
	"github.com/iliyamo/band-manager/internal/repository"
)

// ExpenseStore persists expenses.
type ExpenseStore interface {
	ExpenseTotaler
	Create(ctx context.Context, e *model.Expense) error
	List(ctx context.Context, from, to *time.Time) ([]model.Expense, error)
}

// ExpenseHandler serves the admin expense endpoints.
type ExpenseHandler struct {
	Expenses ExpenseStore
	Cache    CacheInvalidator
	Log      *zap.Logger
	Loc      *time.Location
	Now      Clock
}

func NewExpenseHandler(expenses ExpenseStore, cache CacheInvalidator, log *zap.Logger, loc *time.Location) *ExpenseHandler {
	return &ExpenseHandler{Expenses: expenses, Cache: cache, Log: log, Loc: loc, Now: time.Now}
}

type expenseReq struct {
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Amount   int64   `json:"amount"`
	SpentOn  string  `json:"spentOn"`
	ShowID   *uint64 `json:"showId"`
	Notes    *string `json:"notes"`
}

// List handles GET /api/expenses?range=&from=&to=.
func (h *ExpenseHandler) List(c echo.Context) error {
	q, msg := parseQuery(c, h.Loc)
	if msg != "" {
		return errJSON(c, http.StatusBadRequest, msg)
	}
	b := directory.Resolve(q.Range, q.From, q.To, h.Now().In(h.Loc))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Expenses.List(ctx, b.From, b.To)
	if err != nil {
		h.Log.Error("list expenses", zap.Error(err))
		return errJSON(c, http.StatusInternalServerError, "failed to load expenses")
	}
	var total int64
	for _, e := range items {
		total += e.Amount
	}
	return c.JSON(http.StatusOK, echo.Map{"expenses": items, "total": total, "bounds": b})
}

// Create handles POST /api/expenses.
func (h *ExpenseHandler) Create(c echo.Context) error {
	var req expenseReq
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "invalid body")
	}
	e := model.Expense{
		Title:    strings.TrimSpace(req.Title),
		Category: strings.TrimSpace(req.Category),
		Amount:   req.Amount,
		ShowID:   req.ShowID,
		Notes:    optional(req.Notes),
	}
	if e.Title == "" {
		return errJSON(c, http.StatusBadRequest, "title is required")
	}
	if e.Category == "" {
		e.Category = "general"
	}
	if e.Amount <= 0 {
		return errJSON(c, http.StatusBadRequest, "amount must be positive")
	}
	spent, ok := model.ParseShowDate(req.SpentOn, h.Loc)
	if !ok {
		return errJSON(c, http.StatusBadRequest, "invalid spentOn")
	}
	e.SpentOn = spent

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Expenses.Create(ctx, &e); err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return errJSON(c, http.StatusBadRequest, "showId does not exist")
		}
		h.Log.Error("create expense", zap.Error(err))
		return errJSON(c, http.StatusInternalServerError, "failed to create expense")
	}
	if h.Cache != nil {
		h.Cache.Invalidate(ctx)
	}
	return c.JSON(http.StatusCreated, e)
}
