package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type ExpenseRow struct {
	ID           string
	Date         string
	AmountCents  int64
	CategoryID   string
	CategoryName string
	Comment      string
	CreatedAt    time.Time
}

type CreateExpenseParams struct {
	ID           string
	Date         string
	AmountCents  int64
	CategoryID   string
	CategoryName string
	Comment      string
}

const createExpense = `
INSERT INTO expenses (id, date, amount_cents, category_id, category_name, comment)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO NOTHING
`

// CreateExpense inserts a row. It reports false when the id already existed.
func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (bool, error) {
	res, err := q.db.ExecContext(ctx, createExpense,
		arg.ID, arg.Date, arg.AmountCents, arg.CategoryID, arg.CategoryName, arg.Comment)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const getExpense = `
SELECT id, date, amount_cents, category_id, category_name, comment, created_at
FROM expenses WHERE id = ?
`

func (q *Queries) GetExpense(ctx context.Context, id string) (ExpenseRow, error) {
	row := q.db.QueryRowContext(ctx, getExpense, id)
	var e ExpenseRow
	err := row.Scan(&e.ID, &e.Date, &e.AmountCents, &e.CategoryID, &e.CategoryName, &e.Comment, &e.CreatedAt)
	return e, err
}

const getExpensesBetweenDays = `
SELECT id, date, amount_cents, category_id, category_name, comment, created_at
FROM expenses
WHERE substr(date, 1, 10) BETWEEN ? AND ?
ORDER BY created_at, rowid
`

type GetExpensesBetweenDaysParams struct {
	FromDay string
	ToDay   string
}

func (q *Queries) GetExpensesBetweenDays(ctx context.Context, arg GetExpensesBetweenDaysParams) ([]ExpenseRow, error) {
	rows, err := q.db.QueryContext(ctx, getExpensesBetweenDays, arg.FromDay, arg.ToDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExpenseRow
	for rows.Next() {
		var e ExpenseRow
		if err := rows.Scan(&e.ID, &e.Date, &e.AmountCents, &e.CategoryID, &e.CategoryName, &e.Comment, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countExpenses = `SELECT COUNT(*) FROM expenses`

func (q *Queries) CountExpenses(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countExpenses).Scan(&n)
	return n, err
}
