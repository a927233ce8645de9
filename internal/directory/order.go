package directory

import (
	"slices"
	"time"

	"github.com/iliyamo/band-manager/internal/model"
)

// SortByDateDesc returns a copy of shows ordered by ShowDate, latest first.
// Shows with the same date keep their relative order; undated shows go last.
func SortByDateDesc(shows []model.Show) []model.Show {
	out := slices.Clone(shows)
	slices.SortStableFunc(out, func(a, b model.Show) int {
		switch {
		case a.ShowDate.IsZero() && b.ShowDate.IsZero():
			return 0
		case a.ShowDate.IsZero():
			return 1
		case b.ShowDate.IsZero():
			return -1
		}
		return b.ShowDate.Compare(a.ShowDate)
	})
	return out
}

// UpcomingFirst returns up to limit non-cancelled shows dated after now,
// soonest first.
func UpcomingFirst(shows []model.Show, now time.Time, limit int) []model.Show {
	var out []model.Show
	for _, s := range shows {
		if !s.IsCancelled() && s.ShowDate.After(now) {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Show) int { return a.ShowDate.Compare(b.ShowDate) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []model.Show{}
	}
	return out
}
