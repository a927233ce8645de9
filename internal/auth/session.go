// Package auth describes who is making a request.  A Session is built once
// per request by the authentication middleware and handed to handlers
// through the echo context; nothing here is global.
package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/band-manager/internal/model"
)

// Capabilities are per-user permissions gating what a member may do.
type Capabilities struct {
	CanAddShows    bool `json:"canAddShows"`
	CanViewAmounts bool `json:"canViewAmounts"`
	CanEditName    bool `json:"canEditName"`
}

// Session is the read-only identity of the caller.
type Session struct {
	UserID       uint64       `json:"id"`
	Username     string       `json:"username"`
	DisplayName  string       `json:"displayName"`
	Role         string       `json:"role"`
	Capabilities Capabilities `json:"capabilities"`
	TokenHash    string       `json:"-"`
}

// ForUser builds the session for u.  Admins hold every capability.
func ForUser(u model.User, tokenHash string) Session {
	s := Session{
		UserID:      u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		TokenHash:   tokenHash,
		Capabilities: Capabilities{
			CanAddShows:    u.CanAddShows,
			CanViewAmounts: u.CanViewAmounts,
			CanEditName:    u.CanEditName,
		},
	}
	if s.IsAdmin() {
		s.Capabilities = Capabilities{CanAddShows: true, CanViewAmounts: true, CanEditName: true}
	}
	return s
}

// IsAdmin reports whether the caller has the admin role.
func (s Session) IsAdmin() bool { return s.Role == model.RoleAdmin }

// Capability names accepted by Has.
const (
	CapAddShows    = "canAddShows"
	CapViewAmounts = "canViewAmounts"
	CapEditName    = "canEditName"
)

// Has reports whether the session holds the named capability.
func (s Session) Has(capability string) bool {
	switch capability {
	case CapAddShows:
		return s.Capabilities.CanAddShows
	case CapViewAmounts:
		return s.Capabilities.CanViewAmounts
	case CapEditName:
		return s.Capabilities.CanEditName
	}
	return false
}

const contextKey = "session"

// Set stores s on the request context.
func Set(c echo.Context, s Session) { c.Set(contextKey, s) }

// From returns the session stored by Set.
func From(c echo.Context) (Session, bool) {
	s, ok := c.Get(contextKey).(Session)
	return s, ok
}
