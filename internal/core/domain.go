package core

import (
	"errors"
	"strings"
	"time"
)

type (
	Money struct {
		Cents int64
	}

	Category struct {
		ID   string
		Name string
	}

	// Expense is a single spending record as supplied by a ledger.
	// Date is kept verbatim; use ParseExpenseDate and CalendarDate to read it.
	Expense struct {
		ID       string
		Comment  string
		Amount   Money
		Category Category
		Date     string
	}
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidDate    = errors.New("invalid date")
	ErrEmptyID        = errors.New("empty id")
	ErrEmptyCategory  = errors.New("empty category name")
	ErrCommentTooLong = errors.New("comment too long (max 200 characters)")
)

// IsValidationError reports whether err is one of the validation sentinels.
func IsValidationError(err error) bool {
	for _, target := range []error{ErrInvalidAmount, ErrInvalidDate, ErrEmptyID, ErrEmptyCategory, ErrCommentTooLong} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Accepted layouts for expense dates, tried in order.
// Layouts without a zone are interpreted in the caller's location.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseExpenseDate parses an ISO-ish date string into an instant.
// Date-only values resolve to local midnight in loc.
func ParseExpenseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// CalendarDate returns the YYYY-MM-DD part of an expense date, i.e. the text
// before any time component.
func CalendarDate(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		return s[:i]
	}
	return s
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if _, err := ParseExpenseDate(e.Date, time.UTC); err != nil {
		return err
	}
	if len(e.Comment) > 200 {
		return ErrCommentTooLong
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	return e.Category.Validate()
}
