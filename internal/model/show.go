package model

import (
	"errors"
	"strings"
	"time"
)

// Show statuses as stored in shows.status.
const (
	StatusUpcoming  = "upcoming"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Known show types.  Any other non-empty label is accepted and stored as-is.
const (
	TypeCorporate  = "Corporate"
	TypeUniversity = "University"
	TypePrivate    = "Private"
	TypePublic     = "Public"
)

// Show represents a single scheduled or performed gig.
//
// Fields:
//  ID               – primary key identifier.
//  Title            – free-form title of the gig.
//  City             – city the gig takes place in.
//  ShowType         – Corporate, University, Private, Public or a custom label.
//  OrganizationName – booking organization (nil when not supplied).
//  PublicShowFor    – who a public show is held for (nil when not supplied).
//  TotalAmount      – agreed fee, whole currency units.
//  AdvancePayment   – part of the fee already received.
//  ShowDate         – when the show happens.  Zero means the stored value was
//                     missing or unreadable and is rendered blank.
//  Status           – upcoming, completed or cancelled.
//  IsPaid           – whether the fee has been settled.
//  Notes            – free text.
//  POCName/Phone/Email – point of contact at the organizer.
type Show struct {
	ID               uint64    `json:"id"`
	Title            string    `json:"title"`
	City             string    `json:"city"`
	ShowType         string    `json:"showType"`
	OrganizationName *string   `json:"organizationName"`
	PublicShowFor    *string   `json:"publicShowFor"`
	TotalAmount      int64     `json:"totalAmount"`
	AdvancePayment   int64     `json:"advancePayment"`
	ShowDate         time.Time `json:"showDate"`
	Status           string    `json:"status"`
	IsPaid           bool      `json:"isPaid"`
	Notes            *string   `json:"notes"`
	POCName          *string   `json:"pocName"`
	POCPhone         *string   `json:"pocPhone"`
	POCEmail         *string   `json:"pocEmail"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// IsCancelled reports whether the stored status is cancelled.
func (s Show) IsCancelled() bool { return s.Status == StatusCancelled }

// ValidStatus reports whether st is one of the stored status values.
func ValidStatus(st string) bool {
	switch st {
	case StatusUpcoming, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanonicalShowType maps the known types case-insensitively to their
// stored spelling and keeps any other label as typed (trimmed).
func CanonicalShowType(s string) string {
	s = strings.TrimSpace(s)
	for _, known := range []string{TypeCorporate, TypeUniversity, TypePrivate, TypePublic} {
		if strings.EqualFold(s, known) {
			return known
		}
	}
	return s
}

// showDateLayouts are tried in order after RFC 3339.  They carry no zone
// and are read in the caller's location.
var showDateLayouts = []string{"2006-01-02T15:04", "2006-01-02T15:04:05", "2006-01-02 15:04", "2006-01-02"}

// ParseShowDate accepts RFC 3339, a datetime-local value (YYYY-MM-DDTHH:MM)
// or a bare date.
func ParseShowDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	for _, layout := range showDateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Validate checks a show as it would be stored.
func (s Show) Validate() error { return s.validate(true) }

// ValidateUpdate checks a show after a partial update.  A stored show whose
// date is missing keeps passing until the update supplies one.
func (s Show) ValidateUpdate(dateSupplied bool) error { return s.validate(dateSupplied) }

func (s Show) validate(requireDate bool) error {
	switch {
	case s.Title == "":
		return errors.New("title is required")
	case s.City == "":
		return errors.New("city is required")
	case s.ShowType == "":
		return errors.New("showType is required")
	case requireDate && s.ShowDate.IsZero():
		return errors.New("showDate is required")
	case !ValidStatus(s.Status):
		return errors.New("status must be upcoming, completed or cancelled")
	case s.TotalAmount < 0 || s.AdvancePayment < 0:
		return errors.New("amounts must not be negative")
	case s.AdvancePayment > s.TotalAmount:
		return errors.New("advancePayment must not exceed totalAmount")
	}
	return nil
}
