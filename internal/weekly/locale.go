package weekly

import (
	"strconv"
	"strings"
	"time"

	"weekspend/internal/core"
)

// Locale carries the labels and layouts used for display strings.
// Weekday names are Monday first.
type Locale struct {
	Tag          string
	Weekdays     [7]string
	Months       [12]string
	DateLayout   string
	DecimalSep   string
	NoExpenses   string
	Inapplicable string
	// Transactions is the plural noun used in "(3 transactions)".
	Transactions string
}

var (
	EnGB = Locale{
		Tag:          "en-GB",
		Weekdays:     [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
		Months:       [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
		DateLayout:   "02/01/2006",
		DecimalSep:   ".",
		NoExpenses:   "No expenses recorded for the current week",
		Inapplicable: "N/A",
		Transactions: "transactions",
	}

	ItIT = Locale{
		Tag:          "it-IT",
		Weekdays:     [7]string{"Lun", "Mar", "Mer", "Gio", "Ven", "Sab", "Dom"},
		Months:       [12]string{"Gen", "Feb", "Mar", "Apr", "Mag", "Giu", "Lug", "Ago", "Set", "Ott", "Nov", "Dic"},
		DateLayout:   "02/01/2006",
		DecimalSep:   ",",
		NoExpenses:   "Nessuna spesa registrata per la settimana corrente",
		Inapplicable: "N/D",
		Transactions: "transazioni",
	}
)

// Locales lists the supported locales by tag.
var Locales = map[string]Locale{
	strings.ToLower(EnGB.Tag): EnGB,
	strings.ToLower(ItIT.Tag): ItIT,
}

// LocaleFor looks up a locale by tag, case-insensitively.
func LocaleFor(tag string) (Locale, bool) {
	l, ok := Locales[strings.ToLower(strings.TrimSpace(tag))]
	return l, ok
}

// FormatDate renders a full date such as 15/01/2024.
func (l Locale) FormatDate(t time.Time) string {
	return t.Format(l.DateLayout)
}

// DayLabel renders the short chart label, e.g. "15 Jan".
func (l Locale) DayLabel(t time.Time) string {
	return strconv.Itoa(t.Day()) + " " + l.Months[t.Month()-1]
}

// FormatAmount renders an amount with the locale's decimal separator:
// "120" for whole amounts, "12,50" otherwise.
func (l Locale) FormatAmount(m core.Money) string {
	return m.Format(l.DecimalSep)
}

// FormatPercent renders a share with one decimal, e.g. "37,5%".
func (l Locale) FormatPercent(p float64) string {
	s := strconv.FormatFloat(p, 'f', 1, 64)
	if l.DecimalSep != "." {
		s = strings.Replace(s, ".", l.DecimalSep, 1)
	}
	return s + "%"
}

// CountTransactions renders the category header suffix, e.g. "(2 transactions)".
func (l Locale) CountTransactions(n int) string {
	return "(" + strconv.Itoa(n) + " " + l.Transactions + ")"
}

// weekdayIndex maps time.Weekday to a Monday-first index.
func weekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}
