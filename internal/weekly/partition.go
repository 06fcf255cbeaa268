package weekly

import (
	"time"

	"weekspend/internal/core"
)

// Dated is an expense paired with its parsed instant and calendar date.
type Dated struct {
	core.Expense
	At  time.Time
	Day string // YYYY-MM-DD
}

// Partition splits expenses into current-week and previous-week subsets in a
// single pass, preserving input order within each subset.
//
// Membership is an inclusive instant test against the window. An expense
// must also carry a calendar date that names one of its week's days, so
// that every kept expense lands in exactly one day bucket. Unparseable dates
// and expenses outside both weeks are dropped.
func Partition(expenses []core.Expense, w Window, loc *time.Location) (current, previous []Dated) {
	curDays := dayIndex(w.CurrentDays())
	prevDays := dayIndex(w.PreviousDays())

	for _, e := range expenses {
		at, err := core.ParseExpenseDate(e.Date, loc)
		if err != nil {
			continue
		}
		d := Dated{Expense: e, At: at, Day: core.CalendarDate(e.Date)}
		switch {
		case w.InCurrent(at):
			if _, ok := curDays[d.Day]; ok {
				current = append(current, d)
			}
		case w.InPrevious(at):
			if _, ok := prevDays[d.Day]; ok {
				previous = append(previous, d)
			}
		}
	}
	return current, previous
}

func dayIndex(days [7]time.Time) map[string]int {
	idx := make(map[string]int, len(days))
	for i, d := range days {
		idx[d.Format(time.DateOnly)] = i
	}
	return idx
}
