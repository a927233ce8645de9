package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/band-manager/internal/model"
)

// ExpenseRepo persists band expenses.
type ExpenseRepo struct{ db *sql.DB }

func NewExpenseRepo(db *sql.DB) *ExpenseRepo { return &ExpenseRepo{db: db} }

// Create inserts e and fills in its ID and created_at.  A ShowID that
// names no show yields ErrShowNotFound.
func (r *ExpenseRepo) Create(ctx context.Context, e *model.Expense) error {
	var showID sql.NullInt64
	if e.ShowID != nil {
		showID = sql.NullInt64{Int64: int64(*e.ShowID), Valid: true}
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (title, category, amount, spent_on, show_id, notes) VALUES (?,?,?,?,?,?)`,
		e.Title, e.Category, e.Amount, e.SpentOn.UTC(), showID, nullString(e.Notes))
	if err != nil {
		if isMissingReference(err) {
			return ErrShowNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT created_at FROM expenses WHERE id=?`, e.ID).Scan(&e.CreatedAt)
}

// List returns expenses spent within [from, to], newest first.  Nil
// bounds are open.
func (r *ExpenseRepo) List(ctx context.Context, from, to *time.Time) ([]model.Expense, error) {
	cond, args := spentWithin(from, to)
	q := `SELECT id, title, category, amount, spent_on, show_id, notes, created_at
		FROM expenses WHERE ` + cond + `
		ORDER BY spent_on DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Expense{}
	for rows.Next() {
		var (
			e      model.Expense
			showID sql.NullInt64
			notes  sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Category, &e.Amount, &e.SpentOn, &showID, &notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		if showID.Valid {
			id := uint64(showID.Int64)
			e.ShowID = &id
		}
		e.Notes = stringPtr(notes)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Total sums the amounts of expenses within [from, to].
func (r *ExpenseRepo) Total(ctx context.Context, from, to *time.Time) (int64, error) {
	cond, args := spentWithin(from, to)
	var total int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE `+cond, args...).Scan(&total)
	return total, err
}

func spentWithin(from, to *time.Time) (string, []any) {
	where := []string{"1=1"}
	args := []any{}
	if from != nil {
		where = append(where, "spent_on >= ?")
		args = append(args, from.UTC())
	}
	if to != nil {
		where = append(where, "spent_on <= ?")
		args = append(args, to.UTC())
	}
	return strings.Join(where, " AND "), args
}
