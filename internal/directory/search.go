package directory

import (
	"strings"

	"github.com/iliyamo/band-manager/internal/model"
)

// Search keeps the shows where any searchable field contains query,
// ignoring case.  A blank query returns the input unchanged.  The input
// slice is never modified and order is preserved.
func Search(shows []model.Show, query string) []model.Show {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return shows
	}
	out := make([]model.Show, 0, len(shows))
	for _, s := range shows {
		if matches(s, q) {
			out = append(out, s)
		}
	}
	return out
}

func matches(s model.Show, q string) bool {
	for _, f := range searchFields(s) {
		if f != nil && strings.Contains(strings.ToLower(*f), q) {
			return true
		}
	}
	return false
}

// searchFields lists the fields a query is tested against, in order.  Nil
// entries are optional fields that were never set.
func searchFields(s model.Show) []*string {
	paid := "unpaid"
	if s.IsPaid {
		paid = "paid"
	}
	return []*string{
		&s.Title,
		&s.City,
		&s.ShowType,
		s.OrganizationName,
		s.PublicShowFor,
		s.Notes,
		s.POCName,
		s.POCPhone,
		s.POCEmail,
		&s.Status,
		&paid,
	}
}
