// Package weekly turns a flat list of expenses into a current-week versus
// previous-week report: a seven-day chart series, both weekly totals, the
// week-over-week change and a per-category breakdown of the current week.
//
// Everything here is a pure function of its inputs. The current instant,
// the time zone and the display locale are explicit so callers and tests
// can pin them.
package weekly

import (
	"time"

	"weekspend/internal/core"
)

// Report is the full aggregation for one instant.
type Report struct {
	Window     Window
	StartLabel string
	EndLabel   string

	CurrentDays  [7]DayBucket
	PreviousDays [7]DayBucket
	Series       []DayPoint

	CurrentTotal  core.Money
	PreviousTotal core.Money
	Change        Change

	Categories []CategoryBreakdown
}

// HasData reports whether there is anything to chart. When false, renderers
// show the locale's "no expenses" message instead of the chart.
func (r Report) HasData() bool {
	return r.CurrentTotal.Cents > 0 || r.PreviousTotal.Cents > 0
}

// Aggregator builds reports with a fixed clock, location and locale.
type Aggregator struct {
	now    func() time.Time
	loc    *time.Location
	locale Locale
}

type Option func(*Aggregator)

// WithClock overrides the source of the current instant.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLocation sets the time zone used for day boundaries.
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// WithLocale sets the display locale.
func WithLocale(l Locale) Option {
	return func(a *Aggregator) {
		a.locale = l
	}
}

// NewAggregator defaults to the wall clock, time.Local and en-GB.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		now:    time.Now,
		loc:    time.Local,
		locale: EnGB,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Locale returns the aggregator's display locale.
func (a *Aggregator) Locale() Locale {
	return a.locale
}

// Location returns the aggregator's time zone.
func (a *Aggregator) Location() *time.Location {
	return a.loc
}

// Now reads the aggregator's clock.
func (a *Aggregator) Now() time.Time {
	return a.now()
}

// Window resolves the weeks for the aggregator's current instant.
func (a *Aggregator) Window() Window {
	return ResolveWindow(a.now(), a.loc)
}

// Build aggregates expenses as of the aggregator's current instant.
func (a *Aggregator) Build(expenses []core.Expense) Report {
	return a.BuildAt(a.now(), expenses)
}

// BuildAt aggregates expenses as of now.
func (a *Aggregator) BuildAt(now time.Time, expenses []core.Expense) Report {
	w := ResolveWindow(now, a.loc)
	current, previous := Partition(expenses, w, a.loc)

	curDays, curTotal := Daily(w.CurrentDays(), current, a.locale)
	prevDays, prevTotal := Daily(w.PreviousDays(), previous, a.locale)

	return Report{
		Window:        w,
		StartLabel:    a.locale.FormatDate(w.CurrentStart),
		EndLabel:      a.locale.FormatDate(w.CurrentEnd),
		CurrentDays:   curDays,
		PreviousDays:  prevDays,
		Series:        Combine(curDays, prevDays),
		CurrentTotal:  curTotal,
		PreviousTotal: prevTotal,
		Change:        WeekOverWeek(curTotal, prevTotal),
		Categories:    Categories(current, curTotal, a.locale),
	}
}
