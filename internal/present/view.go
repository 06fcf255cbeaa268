// Package present converts weekly reports into display-ready values shared
// by the HTML dashboard, the JSON API and the terminal report.
package present

import (
	"math"
	"strings"

	"weekspend/internal/core"
	"weekspend/internal/weekly"
)

// Weekly is the render-ready form of a weekly.Report. Amounts are
// formatted for the report's locale; raw cents are kept for the JSON API.
type Weekly struct {
	Locale     string   `json:"locale"`
	StartLabel string   `json:"start"`
	EndLabel   string   `json:"end"`
	Labels     []string `json:"labels"`
	Current    []int64  `json:"currentSeries"`
	Previous   []int64  `json:"previousSeries"`
	Days       []Day    `json:"days"`
	HasData    bool     `json:"hasData"`
	NoExpenses string   `json:"noExpensesMessage,omitempty"`

	CurrentTotal       int64  `json:"currentTotalCents"`
	PreviousTotal      int64  `json:"previousTotalCents"`
	CurrentTotalLabel  string `json:"currentTotal"`
	PreviousTotalLabel string `json:"previousTotal"`
	Change             string `json:"change"`
	Direction          string `json:"direction"`

	Categories []Category `json:"categories"`
	Expanded   []string   `json:"expanded"`
}

// Day is one chart column: the same weekday of both weeks.
type Day struct {
	Weekday        string `json:"weekday"`
	Label          string `json:"label"`
	CurrentDate    string `json:"currentDate"`
	PreviousDate   string `json:"previousDate"`
	Current        string `json:"current"`
	Previous       string `json:"previous"`
	CurrentHeight  int    `json:"currentHeight"`
	PreviousHeight int    `json:"previousHeight"`
	// Change is empty unless the previous week's day had spending.
	Change string `json:"change,omitempty"`
}

// Category is one breakdown row with its transactions.
type Category struct {
	Name         string        `json:"name"`
	AmountCents  int64         `json:"amountCents"`
	Amount       string        `json:"amount"`
	Percentage   float64       `json:"percentage"`
	Share        string        `json:"share"`
	Count        int           `json:"transactionCount"`
	CountLabel   string        `json:"transactionCountLabel"`
	Expanded     bool          `json:"expanded"`
	Transactions []Transaction `json:"transactions"`
}

type Transaction struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	AmountCents int64  `json:"amountCents"`
	Amount      string `json:"amount"`
	Comment     string `json:"comment,omitempty"`
	// Note is the comment for display, "-" when there is none.
	Note string `json:"note"`
}

// NewWeekly flattens r for rendering. Expansion only decides the
// Expanded flags; it never changes which categories are listed.
func NewWeekly(r weekly.Report, locale weekly.Locale, exp weekly.Expansion) Weekly {
	v := Weekly{
		Locale:             locale.Tag,
		StartLabel:         r.StartLabel,
		EndLabel:           r.EndLabel,
		HasData:            r.HasData(),
		CurrentTotal:       r.CurrentTotal.Cents,
		PreviousTotal:      r.PreviousTotal.Cents,
		CurrentTotalLabel:  locale.FormatAmount(r.CurrentTotal),
		PreviousTotalLabel: locale.FormatAmount(r.PreviousTotal),
		Change:             r.Change.Format(locale),
		Direction:          r.Change.Direction.String(),
		Labels:             make([]string, 0, len(r.Series)),
		Current:            make([]int64, 0, len(r.Series)),
		Previous:           make([]int64, 0, len(r.Series)),
		Days:               make([]Day, 0, len(r.Series)),
		Categories:         make([]Category, 0, len(r.Categories)),
		Expanded:           exp.Names(),
	}
	if !v.HasData {
		v.NoExpenses = locale.NoExpenses
	}

	var peak int64
	for _, p := range r.Series {
		peak = max(peak, p.Current.Cents, p.Previous.Cents)
	}
	for _, p := range r.Series {
		v.Labels = append(v.Labels, p.Label)
		v.Current = append(v.Current, p.Current.Cents)
		v.Previous = append(v.Previous, p.Previous.Cents)
		d := Day{
			Weekday:        p.Weekday,
			Label:          p.Label,
			CurrentDate:    p.CurrentDate,
			PreviousDate:   p.PreviousDate,
			Current:        locale.FormatAmount(p.Current),
			Previous:       locale.FormatAmount(p.Previous),
			CurrentHeight:  barHeight(p.Current, peak),
			PreviousHeight: barHeight(p.Previous, peak),
		}
		if p.Previous.Cents > 0 {
			d.Change = p.Change.Format(locale)
		}
		v.Days = append(v.Days, d)
	}

	for _, c := range r.Categories {
		cv := Category{
			Name:         c.Name,
			AmountCents:  c.Amount.Cents,
			Amount:       locale.FormatAmount(c.Amount),
			Percentage:   math.Round(c.Percentage*10) / 10,
			Share:        locale.FormatPercent(c.Percentage),
			Count:        len(c.Transactions),
			CountLabel:   locale.CountTransactions(len(c.Transactions)),
			Expanded:     exp.Expanded(c.Name),
			Transactions: make([]Transaction, 0, len(c.Transactions)),
		}
		for _, t := range c.Transactions {
			cv.Transactions = append(cv.Transactions, Transaction{
				ID:          t.ID,
				Date:        t.Date,
				AmountCents: t.Amount.Cents,
				Amount:      locale.FormatAmount(t.Amount),
				Comment:     t.Comment,
				Note:        noteFor(t.Comment),
			})
		}
		v.Categories = append(v.Categories, cv)
	}
	return v
}

func noteFor(comment string) string {
	if strings.TrimSpace(comment) == "" {
		return "-"
	}
	return comment
}

// barHeight scales m to a 0..100 percentage of peak.
func barHeight(m core.Money, peak int64) int {
	if peak <= 0 || m.Cents <= 0 {
		return 0
	}
	return int(math.Round(float64(m.Cents) / float64(peak) * 100))
}
