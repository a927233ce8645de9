package model

import "time"

// Roles stored in users.role.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User represents an application user record as stored in the
// `users` table.  Capability columns only matter for members; admins
// are granted every capability regardless of what is stored.
//
// Fields:
//  ID             – primary key identifier of the user.
//  Username       – unique login name (lower-cased).
//  DisplayName    – name shown in the UI; members may edit it when allowed.
//  PasswordHash   – bcrypt hashed password.
//  Role           – admin or member.
//  CanAddShows    – member may create and edit shows.
//  CanViewAmounts – member may see money fields.
//  CanEditName    – member may change their display name.
//  IsActive       – whether the account may log in.
type User struct {
	ID             uint64    // users.id
	Username       string    // users.username
	DisplayName    string    // users.display_name
	PasswordHash   string    // users.password_hash
	Role           string    // users.role
	CanAddShows    bool      // users.can_add_shows
	CanViewAmounts bool      // users.can_view_amounts
	CanEditName    bool      // users.can_edit_name
	IsActive       bool      // users.is_active
	CreatedAt      time.Time // users.created_at
	UpdatedAt      time.Time // users.updated_at
}

// Session models an entry in the `sessions` table.  The session id
// (the JWT "jti") is not stored; only its SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the session.
//  TokenHash – SHA-256 hex digest of the session id.
//  ExpiresAt – expiration timestamp of the session.
//  RevokedAt – when the session was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type Session struct {
	ID        uint64     // sessions.id
	UserID    uint64     // sessions.user_id
	TokenHash string     // sessions.token_hash
	ExpiresAt time.Time  // sessions.expires_at
	RevokedAt *time.Time // sessions.revoked_at (nullable)
	CreatedAt time.Time  // sessions.created_at
}
