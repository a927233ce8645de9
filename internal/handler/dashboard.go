package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/band-manager/internal/auth"
	"github.com/iliyamo/band-manager/internal/directory"
)

// upcomingLimit is how many upcoming shows a dashboard lists.
const upcomingLimit = 5

// ExpenseTotaler sums expenses inside a window.
type ExpenseTotaler interface {
	Total(ctx context.Context, from, to *time.Time) (int64, error)
}

// DashboardHandler serves the admin and member dashboards.  Both count
// shows by their stored status.
type DashboardHandler struct {
	Shows    ShowStore
	Expenses ExpenseTotaler
	Log      *zap.Logger
	Loc      *time.Location
	Now      Clock
}

func NewDashboardHandler(shows ShowStore, expenses ExpenseTotaler, log *zap.Logger, loc *time.Location) *DashboardHandler {
	return &DashboardHandler{Shows: shows, Expenses: expenses, Log: log, Loc: loc, Now: time.Now}
}

type money struct {
	TotalRevenue  int64 `json:"totalRevenue"`
	TotalAdvance  int64 `json:"totalAdvance"`
	Outstanding   int64 `json:"outstanding"`
	TotalExpenses int64 `json:"totalExpenses"`
	NetProfit     int64 `json:"netProfit"`
}

type adminStats struct {
	Range         directory.Range        `json:"range"`
	Bounds        directory.Bounds       `json:"bounds"`
	Counts        directory.StatusCounts `json:"counts"`
	Money         money                  `json:"money"`
	TypeBreakdown []directory.Count      `json:"typeBreakdown"`
	CityBreakdown []directory.Count      `json:"cityBreakdown"`
	Upcoming      []showView             `json:"upcoming"`
}

type memberDashboard struct {
	Range         directory.Range        `json:"range"`
	Bounds        directory.Bounds       `json:"bounds"`
	Counts        directory.StatusCounts `json:"counts"`
	Money         *money                 `json:"money,omitempty"`
	Upcoming      []showView             `json:"upcoming"`
	AmountsHidden bool                   `json:"amountsHidden,omitempty"`
}

// window is the dashboard state for one request.  The upcoming list
// ignores the range: it always looks forward from now.
type window struct {
	q        directory.Query
	bounds   directory.Bounds
	inRange  directory.Summary
	counts   directory.StatusCounts
	upcoming []showView
}

// load reads all shows and narrows them to the requested range.
func (h *DashboardHandler) load(c echo.Context, viewAmounts bool) (window, int, string) {
	q, msg := parseQuery(c, h.Loc)
	if msg != "" {
		return window{}, http.StatusBadRequest, msg
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	all, err := h.Shows.ListAll(ctx)
	if err != nil {
		h.Log.Error("dashboard: load shows", zap.Error(err))
		return window{}, http.StatusInternalServerError, "failed to load shows"
	}
	now := h.Now().In(h.Loc)
	b := directory.Resolve(q.Range, q.From, q.To, now)
	filtered := directory.FilterByBounds(all, b)
	return window{
		q:        q,
		bounds:   b,
		inRange:  directory.Aggregate(filtered, now),
		counts:   directory.CountByStatus(filtered),
		upcoming: viewShows(directory.UpcomingFirst(all, now, upcomingLimit), viewAmounts),
	}, 0, ""
}

func (h *DashboardHandler) totals(ctx context.Context, w window) (money, error) {
	m := money{
		TotalRevenue: w.inRange.TotalRevenue,
		TotalAdvance: w.inRange.TotalAdvance,
		Outstanding:  w.inRange.Outstanding,
	}
	spent, err := h.Expenses.Total(ctx, w.bounds.From, w.bounds.To)
	if err != nil {
		return money{}, err
	}
	m.TotalExpenses = spent
	m.NetProfit = m.TotalRevenue - spent
	return m, nil
}

// AdminStats handles GET /api/dashboard/stats.
func (h *DashboardHandler) AdminStats(c echo.Context) error {
	w, code, msg := h.load(c, true)
	if msg != "" {
		return errJSON(c, code, msg)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	m, err := h.totals(ctx, w)
	if err != nil {
		h.Log.Error("dashboard: total expenses", zap.Error(err))
		return errJSON(c, http.StatusInternalServerError, "failed to load expenses")
	}
	return c.JSON(http.StatusOK, adminStats{
		Range:         w.q.Range,
		Bounds:        w.bounds,
		Counts:        w.counts,
		Money:         m,
		TypeBreakdown: w.inRange.TypeBreakdown,
		CityBreakdown: w.inRange.CityBreakdown,
		Upcoming:      w.upcoming,
	})
}

// MemberDashboard handles GET /api/member/dashboard.  Money is included
// only for members who may view amounts.
func (h *DashboardHandler) MemberDashboard(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthenticated(c)
	}
	viewAmounts := s.Capabilities.CanViewAmounts
	w, code, msg := h.load(c, viewAmounts)
	if msg != "" {
		return errJSON(c, code, msg)
	}
	resp := memberDashboard{
		Range:         w.q.Range,
		Bounds:        w.bounds,
		Counts:        w.counts,
		Upcoming:      w.upcoming,
		AmountsHidden: !viewAmounts,
	}
	if viewAmounts {
		ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
		defer cancel()
		m, err := h.totals(ctx, w)
		if err != nil {
			h.Log.Error("member dashboard: total expenses", zap.Error(err))
			return errJSON(c, http.StatusInternalServerError, "failed to load expenses")
		}
		resp.Money = &m
	}
	return c.JSON(http.StatusOK, resp)
}
