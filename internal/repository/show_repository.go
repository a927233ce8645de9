// Package repository contains data access logic.  This file persists shows.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"       // errors for sentinel definitions
	"fmt"
	"time"

	"github.com/iliyamo/band-manager/internal/model"
)

// ErrShowNotFound indicates that a show was not located in the DB.
var ErrShowNotFound = errors.New("show not found")

const showColumns = `id, title, city, show_type, organization_name, public_show_for,
	total_amount, advance_payment, show_date, status, is_paid, notes,
	poc_name, poc_phone, poc_email, created_at, updated_at`

// ShowRepo manages persistence for shows.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

func scanShow(sc rowScanner) (model.Show, error) {
	var (
		s                                       model.Show
		org, publicFor, notes, poc, phone, mail sql.NullString
		date                                    sql.NullTime
	)
	err := sc.Scan(
		&s.ID, &s.Title, &s.City, &s.ShowType, &org, &publicFor,
		&s.TotalAmount, &s.AdvancePayment, &date, &s.Status, &s.IsPaid, &notes,
		&poc, &phone, &mail, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return model.Show{}, err
	}
	s.OrganizationName = stringPtr(org)
	s.PublicShowFor = stringPtr(publicFor)
	s.Notes = stringPtr(notes)
	s.POCName = stringPtr(poc)
	s.POCPhone = stringPtr(phone)
	s.POCEmail = stringPtr(mail)
	if date.Valid {
		s.ShowDate = date.Time
	}
	return s, nil
}

// showDateArg stores a zero show date as NULL.
func showDateArg(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const insertShowSQL = `INSERT INTO shows (title, city, show_type, organization_name, public_show_for,
	total_amount, advance_payment, show_date, status, is_paid, notes, poc_name, poc_phone, poc_email)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// insertShow writes s through ex and returns the new row ID.  Status
// defaults to upcoming when empty.
func insertShow(ctx context.Context, ex execer, s *model.Show) (uint64, error) {
	if s.Status == "" {
		s.Status = model.StatusUpcoming
	}
	res, err := ex.ExecContext(ctx, insertShowSQL,
		s.Title, s.City, s.ShowType, nullString(s.OrganizationName), nullString(s.PublicShowFor),
		s.TotalAmount, s.AdvancePayment, showDateArg(s.ShowDate), s.Status, s.IsPaid, nullString(s.Notes),
		nullString(s.POCName), nullString(s.POCPhone), nullString(s.POCEmail),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Create inserts a new show and populates its ID and DB-maintained
// timestamps.  Status defaults to upcoming when empty.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	id, err := insertShow(ctx, r.db, s)
	if err != nil {
		return err
	}
	fresh, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*s = *fresh
	return nil
}

// CreateMany inserts shows in a single transaction and sets each ID.
// Either every show is stored or none is.
func (r *ShowRepo) CreateMany(ctx context.Context, shows []model.Show) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for i := range shows {
		id, ierr := insertShow(ctx, tx, &shows[i])
		if ierr != nil {
			return fmt.Errorf("show %d (%q): %w", i+1, shows[i].Title, ierr)
		}
		shows[i].ID = id
	}
	return tx.Commit()
}

// GetByID retrieves a show by its ID.  It returns ErrShowNotFound if
// there is no matching row.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*model.Show, error) {
	s, err := scanShow(r.db.QueryRowContext(ctx, `SELECT `+showColumns+` FROM shows WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListAll returns every show, latest first.  Undated shows come last and
// ties are broken by id so the order is deterministic across calls.
func (r *ShowRepo) ListAll(ctx context.Context) ([]model.Show, error) {
	const q = `SELECT ` + showColumns + ` FROM shows
		ORDER BY show_date IS NULL, show_date DESC, id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.Show{}
	for rows.Next() {
		s, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update writes every editable column of s.  It only performs the UPDATE
// when at least one column differs (compared NULL-safely); otherwise it
// returns ErrNoChange.  A missing row yields ErrShowNotFound.
func (r *ShowRepo) Update(ctx context.Context, s *model.Show) error {
	args := []any{
		s.Title, s.City, s.ShowType, nullString(s.OrganizationName), nullString(s.PublicShowFor),
		s.TotalAmount, s.AdvancePayment, showDateArg(s.ShowDate), s.Status, s.IsPaid, nullString(s.Notes),
		nullString(s.POCName), nullString(s.POCPhone), nullString(s.POCEmail),
	}
	const q = `UPDATE shows
		SET title = ?, city = ?, show_type = ?, organization_name = ?, public_show_for = ?,
		    total_amount = ?, advance_payment = ?, show_date = ?, status = ?, is_paid = ?, notes = ?,
		    poc_name = ?, poc_phone = ?, poc_email = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
		  AND NOT (title <=> ? AND city <=> ? AND show_type <=> ? AND organization_name <=> ? AND public_show_for <=> ?
		       AND total_amount <=> ? AND advance_payment <=> ? AND show_date <=> ? AND status <=> ? AND is_paid <=> ?
		       AND notes <=> ? AND poc_name <=> ? AND poc_phone <=> ? AND poc_email <=> ?)`

	full := append(append(append([]any{}, args...), s.ID), args...)
	res, err := r.db.ExecContext(ctx, q, full...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	// Determine if it's "not found" or simply "no change".
	var one int
	if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM shows WHERE id = ? LIMIT 1`, s.ID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrShowNotFound
		}
		return err
	}
	return ErrNoChange
}
