package directory

import (
	"time"

	"github.com/iliyamo/band-manager/internal/model"
)

// Query carries the user-controlled filter inputs of a view.
type Query struct {
	Range  Range
	From   *time.Time // custom range start date, nil when unset
	To     *time.Time // custom range end date, nil when unset
	Search string
}

// Result is the derived state of a view: the resolved window, the matching
// shows ordered latest first, and their summary.
type Result struct {
	Bounds  Bounds       `json:"bounds"`
	Shows   []model.Show `json:"shows"`
	Summary Summary      `json:"summary"`
}

// FilterByBounds keeps the shows dated inside b, preserving order.
func FilterByBounds(shows []model.Show, b Bounds) []model.Show {
	if b.Unbounded() {
		return shows
	}
	out := make([]model.Show, 0, len(shows))
	for _, s := range shows {
		if b.Contains(s.ShowDate) {
			out = append(out, s)
		}
	}
	return out
}

// Run derives a view from a fresh snapshot of shows: date window, then
// free-text search, then aggregation over the filtered set, then ordering.
func Run(shows []model.Show, q Query, now time.Time) Result {
	b := Resolve(q.Range, q.From, q.To, now)
	filtered := Search(FilterByBounds(shows, b), q.Search)
	return Result{
		Bounds:  b,
		Shows:   SortByDateDesc(filtered),
		Summary: Aggregate(filtered, now),
	}
}
