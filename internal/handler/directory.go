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

// DirectoryHandler serves the filtered show directory.  Every request
// derives the view from a fresh load of all shows.
type DirectoryHandler struct {
	Shows ShowStore
	Log   *zap.Logger
	Loc   *time.Location
	Now   Clock
}

func NewDirectoryHandler(shows ShowStore, log *zap.Logger, loc *time.Location) *DirectoryHandler {
	return &DirectoryHandler{Shows: shows, Log: log, Loc: loc, Now: time.Now}
}

type directoryResp struct {
	Range         directory.Range  `json:"range"`
	Query         string           `json:"q"`
	Bounds        directory.Bounds `json:"bounds"`
	Shows         []showView       `json:"shows"`
	Summary       summaryView      `json:"summary"`
	AmountsHidden bool             `json:"amountsHidden,omitempty"`
}

// summaryView renders a directory summary with its organization groups
// shaped like the top-level show list.
type summaryView struct {
	directory.Summary
	OrgBreakdown []orgGroupView `json:"orgBreakdown"`
}

type orgGroupView struct {
	directory.OrgGroup
	Shows []showView `json:"shows"`
}

// Get handles GET /api/directory?q=&range=&from=&to=.
func (h *DirectoryHandler) Get(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthenticated(c)
	}
	q, msg := parseQuery(c, h.Loc)
	if msg != "" {
		return errJSON(c, http.StatusBadRequest, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	shows, err := h.Shows.ListAll(ctx)
	if err != nil {
		h.Log.Error("directory: load shows", zap.Error(err))
		return errJSON(c, http.StatusInternalServerError, "failed to load shows")
	}

	res := directory.Run(shows, q, h.Now().In(h.Loc))
	viewAmounts := s.Capabilities.CanViewAmounts
	return c.JSON(http.StatusOK, directoryResp{
		Range:         q.Range,
		Query:         q.Search,
		Bounds:        res.Bounds,
		Shows:         viewShows(res.Shows, viewAmounts),
		Summary:       viewSummary(res.Summary, viewAmounts),
		AmountsHidden: !viewAmounts,
	})
}

// viewSummary shapes sum for the response.  Without viewAmounts every
// money figure is zeroed, including the amounts of the grouped shows.
func viewSummary(sum directory.Summary, viewAmounts bool) summaryView {
	if !viewAmounts {
		sum.TotalRevenue, sum.TotalAdvance, sum.Outstanding = 0, 0, 0
	}
	groups := make([]orgGroupView, 0, len(sum.OrgBreakdown))
	for _, g := range sum.OrgBreakdown {
		if !viewAmounts {
			g.Revenue = 0
		}
		groups = append(groups, orgGroupView{OrgGroup: g, Shows: viewShows(g.Shows, viewAmounts)})
	}
	return summaryView{Summary: sum, OrgBreakdown: groups}
}
