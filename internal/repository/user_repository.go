package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/band-manager/internal/model"
	"github.com/iliyamo/band-manager/internal/utils"
)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrUsernameExists is returned by Create for a taken username.
var ErrUsernameExists = errors.New("username already exists")

const userColumns = `id, username, display_name, password_hash, role,
	can_add_shows, can_view_amounts, can_edit_name, is_active, created_at, updated_at`

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// NewUser carries the fields needed to create an account.
type NewUser struct {
	Username       string
	DisplayName    string
	Password       string
	Role           string
	CanAddShows    bool
	CanViewAmounts bool
	CanEditName    bool
}

// NormalizeUsername trims and lower-cases a login name.
func NormalizeUsername(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func scanUser(sc rowScanner) (model.User, error) {
	var u model.User
	err := sc.Scan(&u.ID, &u.Username, &u.DisplayName, &u.PasswordHash, &u.Role,
		&u.CanAddShows, &u.CanViewAmounts, &u.CanEditName, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// Create hashes the password and inserts the user, returning its ID.
func (r *UserRepo) Create(ctx context.Context, nu NewUser, cost int) (uint64, error) {
	username := NormalizeUsername(nu.Username)
	display := strings.TrimSpace(nu.DisplayName)
	if display == "" {
		display = username
	}
	hash, err := utils.HashPassword(nu.Password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (username, display_name, password_hash, role, can_add_shows, can_view_amounts, can_edit_name)
		 VALUES (?,?,?,?,?,?,?)`,
		username, display, hash, nu.Role, nu.CanAddShows, nu.CanViewAmounts, nu.CanEditName)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches a user by normalized username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username=? LIMIT 1`, NormalizeUsername(username)))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id=? LIMIT 1`, id))
}

// UpdateDisplayName changes the name shown for a user.
func (r *UserRepo) UpdateDisplayName(ctx context.Context, id uint64, name string) error {
	return r.exec1(ctx, `UPDATE users SET display_name=? WHERE id=?`, name, id)
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	return r.exec1(ctx, `UPDATE users SET password_hash=? WHERE id=?`, hash, id)
}

// SetCapabilities stores a member's capability flags.
func (r *UserRepo) SetCapabilities(ctx context.Context, id uint64, addShows, viewAmounts, editName bool) error {
	return r.exec1(ctx,
		`UPDATE users SET can_add_shows=?, can_view_amounts=?, can_edit_name=? WHERE id=?`,
		addShows, viewAmounts, editName, id)
}

// exec1 runs an UPDATE keyed by id and maps a missing row to
// ErrUserNotFound.  Unchanged rows are not an error.
func (r *UserRepo) exec1(ctx context.Context, q string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	id := args[len(args)-1]
	var one int
	if err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id=?`, id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
