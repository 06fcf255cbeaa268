package ledger

import (
	"context"
	"time"

	"weekspend/internal/core"
)

// Ports for outbound adapters.
type (
	// ExpenseLister returns expenses dated within [from, to]. Adapters may
	// return a superset; the weekly aggregation does exact filtering.
	ExpenseLister interface {
		ListExpenses(ctx context.Context, from, to time.Time) ([]core.Expense, error)
	}

	ExpenseWriter interface {
		Append(ctx context.Context, e core.Expense) (ref string, err error)
	}
)
