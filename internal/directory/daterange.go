// Package directory implements the show filtering and aggregation pipeline
// behind the directory and dashboard views.  Every function here is pure:
// given the same shows, query and reference time it returns the same result
// and never mutates its input.
package directory

import (
	"errors"
	"strings"
	"time"
)

// Range names a time window a view can be filtered to.
type Range string

const (
	RangeLifetime    Range = "lifetime"
	RangeThisYear    Range = "this_year"
	RangeLastYear    Range = "last_year"
	RangeThisMonth   Range = "this_month"
	RangeLastMonth   Range = "last_month"
	RangeLast3Months Range = "last_3_months"
	RangeLast6Months Range = "last_6_months"
	RangeCustom      Range = "custom"
)

// ErrUnknownRange is returned by ParseRange for tags outside the list above.
var ErrUnknownRange = errors.New("unknown range")

// ErrInvalidDate is returned by ParseDay for values that are not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date")

// dayLayout is the calendar-date format used by custom range bounds.
const dayLayout = "2006-01-02"

// ParseRange maps a query value to a Range.  An empty value means lifetime.
func ParseRange(s string) (Range, error) {
	r := Range(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case "":
		return RangeLifetime, nil
	case RangeLifetime, RangeThisYear, RangeLastYear, RangeThisMonth,
		RangeLastMonth, RangeLast3Months, RangeLast6Months, RangeCustom:
		return r, nil
	}
	return "", ErrUnknownRange
}

// ParseDay parses a YYYY-MM-DD calendar date in loc.  An empty string
// yields nil so callers can leave a custom bound open.
func ParseDay(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(dayLayout, s, loc)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &d, nil
}

// Bounds is a resolved time window.  A nil side is open.
type Bounds struct {
	From *time.Time `json:"from"`
	To   *time.Time `json:"to"`
}

// Unbounded reports whether neither side is set.
func (b Bounds) Unbounded() bool { return b.From == nil && b.To == nil }

// Contains reports whether t falls inside the window, both ends inclusive.
// A zero t is only inside an unbounded window.
func (b Bounds) Contains(t time.Time) bool {
	if b.Unbounded() {
		return true
	}
	if t.IsZero() {
		return false
	}
	if b.From != nil && t.Before(*b.From) {
		return false
	}
	if b.To != nil && t.After(*b.To) {
		return false
	}
	return true
}

// Resolve turns a named range into concrete bounds relative to now.  Calendar
// boundaries are computed in now's location.  from and to are only read for
// RangeCustom, where from is rounded down to the start of its day and to up
// to the last millisecond of its day so the end date is inclusive.
func Resolve(r Range, from, to *time.Time, now time.Time) Bounds {
	loc := now.Location()
	y, m, _ := now.Date()

	switch r {
	case RangeThisYear:
		return span(time.Date(y, time.January, 1, 0, 0, 0, 0, loc), time.Date(y, time.December, 31, 23, 59, 59, 0, loc))
	case RangeLastYear:
		return span(time.Date(y-1, time.January, 1, 0, 0, 0, 0, loc), time.Date(y-1, time.December, 31, 23, 59, 59, 0, loc))
	case RangeThisMonth:
		return monthSpan(y, m, loc)
	case RangeLastMonth:
		return monthSpan(y, m-1, loc)
	case RangeLast3Months:
		return span(now.AddDate(0, -3, 0), now)
	case RangeLast6Months:
		return span(now.AddDate(0, -6, 0), now)
	case RangeCustom:
		var b Bounds
		if from != nil {
			fy, fm, fd := from.In(loc).Date()
			start := time.Date(fy, fm, fd, 0, 0, 0, 0, loc)
			b.From = &start
		}
		if to != nil {
			ty, tm, td := to.In(loc).Date()
			end := time.Date(ty, tm, td, 23, 59, 59, int(999*time.Millisecond), loc)
			b.To = &end
		}
		return b
	}
	return Bounds{}
}

func span(from, to time.Time) Bounds {
	return Bounds{From: &from, To: &to}
}

// monthSpan covers the calendar month m of year y.  time.Date normalises
// month 0 to December of the previous year.
func monthSpan(y int, m time.Month, loc *time.Location) Bounds {
	first := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)
	return span(first, time.Date(last.Year(), last.Month(), last.Day(), 23, 59, 59, 0, loc))
}
