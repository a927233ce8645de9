package handler // handler defines http handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/band-manager/internal/directory"
	"github.com/iliyamo/band-manager/internal/model"
	"github.com/iliyamo/band-manager/internal/queue"
)

// dbTimeout bounds every repository call made by a handler.
const dbTimeout = 5 * time.Second

// ShowStore is the show persistence used by handlers.
type ShowStore interface {
	Create(ctx context.Context, s *model.Show) error
	GetByID(ctx context.Context, id uint64) (*model.Show, error)
	ListAll(ctx context.Context) ([]model.Show, error)
	Update(ctx context.Context, s *model.Show) error
}

// EventPublisher announces show changes to the activity log.
type EventPublisher interface {
	PublishShowChanged(ctx context.Context, ev queue.ShowChangedEvent) error
}

// CacheInvalidator drops cached GET responses after a write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// Clock returns the current time.  Tests pin it.
type Clock func() time.Time

func errJSON(c echo.Context, code int, msg string) error {
	return c.JSON(code, echo.Map{"error": msg})
}

// unauthenticated answers requests that reached a handler without a
// session.  Routes are always behind Authenticate, so this is a wiring bug.
func unauthenticated(c echo.Context) error {
	return errJSON(c, http.StatusUnauthorized, "not authenticated")
}

func parseID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// parseQuery reads the range, from, to and q query parameters.
func parseQuery(c echo.Context, loc *time.Location) (directory.Query, string) {
	r, err := directory.ParseRange(c.QueryParam("range"))
	if err != nil {
		return directory.Query{}, "invalid range"
	}
	from, err := directory.ParseDay(c.QueryParam("from"), loc)
	if err != nil {
		return directory.Query{}, "invalid from date, expected YYYY-MM-DD"
	}
	to, err := directory.ParseDay(c.QueryParam("to"), loc)
	if err != nil {
		return directory.Query{}, "invalid to date, expected YYYY-MM-DD"
	}
	// from/to without an explicit range select a custom window
	if (from != nil || to != nil) && c.QueryParam("range") == "" {
		r = directory.RangeCustom
	}
	return directory.Query{Range: r, From: from, To: to, Search: c.QueryParam("q")}, ""
}

// showView is the JSON shape of a show.  A zero date renders as null and
// money fields are blanked for callers who may not see amounts.
type showView struct {
	model.Show
	ShowDate      *time.Time `json:"showDate"`
	AmountsHidden bool       `json:"amountsHidden,omitempty"`
}

func viewShow(s model.Show, viewAmounts bool) showView {
	v := showView{Show: s}
	if !s.ShowDate.IsZero() {
		d := s.ShowDate
		v.ShowDate = &d
	}
	if !viewAmounts {
		v.TotalAmount, v.AdvancePayment = 0, 0
		v.AmountsHidden = true
	}
	return v
}

func viewShows(shows []model.Show, viewAmounts bool) []showView {
	out := make([]showView, 0, len(shows))
	for _, s := range shows {
		out = append(out, viewShow(s, viewAmounts))
	}
	return out
}

// optional trims an optional text field; blank becomes nil.
func optional(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
