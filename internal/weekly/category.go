package weekly

import (
	"cmp"
	"slices"
	"time"

	"weekspend/internal/core"
)

// TransactionEntry is one expense as listed under its category.
type TransactionEntry struct {
	ID      string
	Date    string // display date, e.g. 15/01/2024
	Amount  core.Money
	Comment string

	day string
}

// CategoryBreakdown is one category's share of the current week.
type CategoryBreakdown struct {
	Name         string
	Amount       core.Money
	Percentage   float64
	Transactions []TransactionEntry
}

// Categories groups the current week's expenses by category name.
//
// Grouping is by name, not id: two categories with the same display name
// merge into one row. Categories are ordered by amount descending and
// transactions by date descending; both sorts are stable, so ties keep
// first-seen order. Percentages are of total and are zero when total is zero.
func Categories(subset []Dated, total core.Money, locale Locale) []CategoryBreakdown {
	var (
		out   []CategoryBreakdown
		index = map[string]int{}
	)
	for _, e := range subset {
		name := e.Category.Name
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, CategoryBreakdown{Name: name})
		}
		c := &out[i]
		c.Amount = c.Amount.Add(e.Amount)
		c.Transactions = append(c.Transactions, TransactionEntry{
			ID:      e.ID,
			Date:    displayDate(e.Day, locale),
			Amount:  e.Amount,
			Comment: e.Comment,
			day:     e.Day,
		})
	}

	for i := range out {
		c := &out[i]
		if total.Cents > 0 {
			c.Percentage = float64(c.Amount.Cents) / float64(total.Cents) * 100
		}
		slices.SortStableFunc(c.Transactions, func(a, b TransactionEntry) int {
			return cmp.Compare(b.day, a.day)
		})
	}
	slices.SortStableFunc(out, func(a, b CategoryBreakdown) int {
		return cmp.Compare(b.Amount.Cents, a.Amount.Cents)
	})
	return out
}

func displayDate(day string, locale Locale) string {
	t, err := time.Parse(time.DateOnly, day)
	if err != nil {
		return day
	}
	return locale.FormatDate(t)
}
