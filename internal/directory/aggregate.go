package directory

import (
	"slices"
	"strings"
	"time"

	"github.com/iliyamo/band-manager/internal/model"
)

// Count is one row of a breakdown: a label and how many shows carry it.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Contact is a point of contact collected from an organization's shows.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// OrgGroup collects the shows booked by one organization.  Key is the
// folded grouping identity; Label is the first spelling seen.
type OrgGroup struct {
	Key      string       `json:"key"`
	Label    string       `json:"label"`
	Count    int          `json:"count"`
	Revenue  int64        `json:"revenue"`
	Shows    []model.Show `json:"shows"`
	Contacts []Contact    `json:"contacts"`
}

// Summary holds the figures derived from a set of shows.
//
// Completed and Upcoming partition the non-cancelled shows by ShowDate
// against the reference time, so Completed+Upcoming+Cancelled == TotalShows
// and Paid+Unpaid == TotalShows for every input.  StatusMismatches counts
// non-cancelled shows whose stored status disagrees with that date-derived
// classification.
type Summary struct {
	TotalShows       int        `json:"totalShows"`
	Paid             int        `json:"paid"`
	Unpaid           int        `json:"unpaid"`
	Completed        int        `json:"completed"`
	Upcoming         int        `json:"upcoming"`
	Cancelled        int        `json:"cancelled"`
	TotalRevenue     int64      `json:"totalRevenue"`
	TotalAdvance     int64      `json:"totalAdvance"`
	Outstanding      int64      `json:"outstanding"`
	StatusMismatches int        `json:"statusMismatches"`
	TypeBreakdown    []Count    `json:"typeBreakdown"`
	CityBreakdown    []Count    `json:"cityBreakdown"`
	OrgBreakdown     []OrgGroup `json:"orgBreakdown"`
}

// OrgKey returns the grouping identity of a show's organization: the
// trimmed, lower-cased organization name, falling back to publicShowFor.
// The second value is the trimmed original spelling used as a label.  An
// empty key means the show has no organization.
func OrgKey(s model.Show) (key, label string) {
	label = trimmed(s.OrganizationName)
	if label == "" {
		label = trimmed(s.PublicShowFor)
	}
	return strings.ToLower(label), label
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// Aggregate computes the summary of shows relative to now.  Breakdowns are
// ordered by descending count; ties keep the order in which each label was
// first seen in shows.
func Aggregate(shows []model.Show, now time.Time) Summary {
	sum := Summary{TotalShows: len(shows)}
	types := newCounter()
	cities := newCounter()
	var orgs []*OrgGroup
	orgIdx := map[string]int{}

	for _, s := range shows {
		if s.IsPaid {
			sum.Paid++
		} else {
			sum.Unpaid++
		}

		if s.IsCancelled() {
			sum.Cancelled++
		} else {
			past := !s.ShowDate.After(now)
			if past {
				sum.Completed++
			} else {
				sum.Upcoming++
			}
			if (past && s.Status == model.StatusUpcoming) || (!past && s.Status == model.StatusCompleted) {
				sum.StatusMismatches++
			}
			sum.TotalRevenue += s.TotalAmount
			sum.TotalAdvance += s.AdvancePayment
			if !s.IsPaid {
				if due := s.TotalAmount - s.AdvancePayment; due > 0 {
					sum.Outstanding += due
				}
			}
		}

		types.add(s.ShowType)
		cities.add(s.City)

		key, label := OrgKey(s)
		if key == "" {
			continue
		}
		i, ok := orgIdx[key]
		if !ok {
			i = len(orgs)
			orgIdx[key] = i
			orgs = append(orgs, &OrgGroup{Key: key, Label: label, Contacts: []Contact{}})
		}
		g := orgs[i]
		g.Count++
		if !s.IsCancelled() {
			g.Revenue += s.TotalAmount
		}
		g.Shows = append(g.Shows, s)
		g.Contacts = addContact(g.Contacts, s)
	}

	sum.TypeBreakdown = types.sorted()
	sum.CityBreakdown = cities.sorted()
	sum.OrgBreakdown = make([]OrgGroup, 0, len(orgs))
	for _, g := range orgs {
		sum.OrgBreakdown = append(sum.OrgBreakdown, *g)
	}
	slices.SortStableFunc(sum.OrgBreakdown, func(a, b OrgGroup) int { return b.Count - a.Count })
	return sum
}

// counter tallies labels while remembering first-seen order.
type counter struct {
	rows []Count
	idx  map[string]int
}

func newCounter() *counter { return &counter{idx: map[string]int{}} }

func (c *counter) add(label string) {
	i, ok := c.idx[label]
	if !ok {
		i = len(c.rows)
		c.idx[label] = i
		c.rows = append(c.rows, Count{Label: label})
	}
	c.rows[i].Count++
}

func (c *counter) sorted() []Count {
	out := slices.Clone(c.rows)
	if out == nil {
		out = []Count{}
	}
	slices.SortStableFunc(out, func(a, b Count) int { return b.Count - a.Count })
	return out
}

// addContact appends the show's point of contact unless it is empty or
// already listed.
func addContact(list []Contact, s model.Show) []Contact {
	c := Contact{Name: trimmed(s.POCName), Phone: trimmed(s.POCPhone), Email: trimmed(s.POCEmail)}
	if c == (Contact{}) {
		return list
	}
	if slices.Contains(list, c) {
		return list
	}
	return append(list, c)
}

// StatusCounts tallies shows by their stored status field rather than by
// date.  Dashboards report these figures.
type StatusCounts struct {
	Total     int `json:"total"`
	Upcoming  int `json:"upcoming"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	Paid      int `json:"paid"`
	Unpaid    int `json:"unpaid"`
}

// CountByStatus returns the stored-status tallies of shows.  Shows with an
// unrecognised status only count toward Total and the paid split.
func CountByStatus(shows []model.Show) StatusCounts {
	var sc StatusCounts
	for _, s := range shows {
		sc.Total++
		switch s.Status {
		case model.StatusUpcoming:
			sc.Upcoming++
		case model.StatusCompleted:
			sc.Completed++
		case model.StatusCancelled:
			sc.Cancelled++
		}
		if s.IsPaid {
			sc.Paid++
		} else {
			sc.Unpaid++
		}
	}
	return sc
}
