package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"weekspend/internal/core"
	"weekspend/internal/ledger"
)

var ErrNotFound = errors.New("expense not found")

var (
	_ ledger.ExpenseLister = (*SQLiteRepository)(nil)
	_ ledger.ExpenseWriter = (*SQLiteRepository)(nil)
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection; used by readiness probes.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Append implements ledger.ExpenseWriter. Re-appending an existing id is a
// no-op so redelivered messages do not duplicate rows.
func (r *SQLiteRepository) Append(ctx context.Context, e core.Expense) (string, error) {
	if strings.TrimSpace(e.ID) == "" {
		e.ID = uuid.NewString()
	}
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	created, err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		ID:           e.ID,
		Date:         strings.TrimSpace(e.Date),
		AmountCents:  e.Amount.Cents,
		CategoryID:   e.Category.ID,
		CategoryName: strings.TrimSpace(e.Category.Name),
		Comment:      e.Comment,
	})
	if err != nil {
		return "", fmt.Errorf("create expense: %w", err)
	}

	if created {
		slog.InfoContext(ctx, "Expense saved to SQLite",
			"id", e.ID,
			"category", e.Category.Name,
			"amount_cents", e.Amount.Cents,
			"date", e.Date)
	} else {
		slog.DebugContext(ctx, "Expense already stored", "id", e.ID)
	}
	return e.ID, nil
}

// ListExpenses implements ledger.ExpenseLister. The query matches on the
// calendar-date prefix widened by one day each side, so zone offsets
// between the stored text and the caller's location cannot lose rows.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, from, to time.Time) ([]core.Expense, error) {
	rows, err := r.queries.GetExpensesBetweenDays(ctx, GetExpensesBetweenDaysParams{
		FromDay: from.AddDate(0, 0, -1).Format(time.DateOnly),
		ToDay:   to.AddDate(0, 0, 1).Format(time.DateOnly),
	})
	if err != nil {
		return nil, fmt.Errorf("get expenses between days: %w", err)
	}
	out := make([]core.Expense, len(rows))
	for i, row := range rows {
		out[i] = toExpense(row)
	}
	return out, nil
}

// GetExpense retrieves a single expense by ID.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	row, err := r.queries.GetExpense(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return toExpense(row), nil
}

// Count returns the number of stored expenses.
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.queries.CountExpenses(ctx)
	if err != nil {
		return 0, fmt.Errorf("count expenses: %w", err)
	}
	return n, nil
}

func toExpense(row ExpenseRow) core.Expense {
	return core.Expense{
		ID:       row.ID,
		Date:     row.Date,
		Amount:   core.Money{Cents: row.AmountCents},
		Category: core.Category{ID: row.CategoryID, Name: row.CategoryName},
		Comment:  row.Comment,
	}
}
