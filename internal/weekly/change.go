package weekly

import (
	"strconv"
	"strings"

	"weekspend/internal/core"
)

// Direction tells whether spending went up or down.
type Direction int

const (
	Unchanged Direction = iota
	Increase
	Decrease
)

func (d Direction) String() string {
	switch d {
	case Increase:
		return "up"
	case Decrease:
		return "down"
	default:
		return "flat"
	}
}

// Change is a relative difference between two amounts.
// Applicable is false when the baseline is zero.
type Change struct {
	Percent    float64
	Applicable bool
	Direction  Direction
}

// WeekOverWeek computes (current-previous)/previous*100.
func WeekOverWeek(current, previous core.Money) Change {
	c := Change{Direction: Unchanged}
	switch {
	case current.Cents > previous.Cents:
		c.Direction = Increase
	case current.Cents < previous.Cents:
		c.Direction = Decrease
	}
	if previous.Cents <= 0 {
		return c
	}
	c.Applicable = true
	c.Percent = float64(current.Cents-previous.Cents) / float64(previous.Cents) * 100
	return c
}

// Format renders the change with one decimal and an explicit sign, e.g.
// "+20.0%", or the locale's not-applicable marker.
func (c Change) Format(locale Locale) string {
	if !c.Applicable {
		return locale.Inapplicable
	}
	s := strconv.FormatFloat(c.Percent, 'f', 1, 64)
	if c.Percent >= 0 {
		s = "+" + s
	}
	if locale.DecimalSep != "." {
		s = strings.Replace(s, ".", locale.DecimalSep, 1)
	}
	return s + "%"
}

func (c Change) String() string {
	return c.Format(EnGB)
}
