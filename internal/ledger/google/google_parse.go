package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"weekspend/internal/core"
)

// Column positions on the expenses sheet.
const (
	colID = iota
	colDate
	colAmount
	colCategoryID
	colCategory
	colComment
)

// parseRows converts a values matrix (as returned by the Sheets API) into
// expenses. A first row whose amount cell is not numeric is treated as the
// header. Rows without a date, amount or category are skipped and counted.
func parseRows(values [][]interface{}) ([]core.Expense, int) {
	var out []core.Expense
	skipped := 0
	for i, raw := range values {
		row := toStrings(raw)
		if isBlank(row) {
			continue
		}
		cents, ok := parseEurosToCents(safeGet(row, colAmount))
		if !ok {
			if i == 0 {
				continue
			}
			skipped++
			continue
		}
		date := safeGet(row, colDate)
		name := safeGet(row, colCategory)
		if date == "" || name == "" {
			skipped++
			continue
		}
		id := safeGet(row, colID)
		if id == "" {
			id = fmt.Sprintf("row-%d", i+1)
		}
		out = append(out, core.Expense{
			ID:       id,
			Date:     date,
			Amount:   core.Money{Cents: cents},
			Category: core.Category{ID: safeGet(row, colCategoryID), Name: name},
			Comment:  safeGet(row, colComment),
		})
	}
	return out, skipped
}

func rowFromExpense(e core.Expense) []any {
	return []any{e.ID, e.Date, e.Amount.Decimal(), e.Category.ID, e.Category.Name, e.Comment}
}

// filterRange keeps expenses whose calendar date is within one day of
// [from, to]; rows with unreadable dates are kept for the core to drop.
func filterRange(in []core.Expense, from, to time.Time) []core.Expense {
	lo := from.AddDate(0, 0, -1).Format(time.DateOnly)
	hi := to.AddDate(0, 0, 1).Format(time.DateOnly)
	out := make([]core.Expense, 0, len(in))
	for _, e := range in {
		day := core.CalendarDate(e.Date)
		if _, err := time.Parse(time.DateOnly, day); err == nil && (day < lo || day > hi) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

func parseEurosToCents(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	// Normalize decimal comma
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return int64((f * 100.0) + 0.5), true
}
