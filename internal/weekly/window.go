package weekly

import "time"

// Window holds the inclusive boundaries of the current and previous week.
type Window struct {
	CurrentStart  time.Time
	CurrentEnd    time.Time
	PreviousStart time.Time
	PreviousEnd   time.Time
}

const lastInstant = 999 * time.Millisecond

// ResolveWindow computes the Monday-to-Sunday week containing now, in loc,
// and the week immediately before it. The current week runs from Monday
// 00:00:00.000 to Sunday 23:59:59.999 local time.
func ResolveWindow(now time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	y, m, d := now.Date()
	offset := weekdayIndex(now.Weekday()) // Sunday is 6 days after Monday

	start := time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
	end := time.Date(y, m, d-offset+6, 23, 59, 59, int(lastInstant), loc)

	return Window{
		CurrentStart:  start,
		CurrentEnd:    end,
		PreviousStart: start.AddDate(0, 0, -7),
		PreviousEnd:   end.AddDate(0, 0, -7),
	}
}

// InCurrent reports whether t falls inside the current week, inclusively.
func (w Window) InCurrent(t time.Time) bool {
	return !t.Before(w.CurrentStart) && !t.After(w.CurrentEnd)
}

// InPrevious reports whether t falls inside the previous week, inclusively.
func (w Window) InPrevious(t time.Time) bool {
	return !t.Before(w.PreviousStart) && !t.After(w.PreviousEnd)
}

// CurrentDays returns local midnight of each day of the current week, Monday first.
func (w Window) CurrentDays() [7]time.Time {
	return weekDays(w.CurrentStart)
}

// PreviousDays returns the seven calendar dates of the previous week.
func (w Window) PreviousDays() [7]time.Time {
	return weekDays(w.PreviousStart)
}

func weekDays(start time.Time) [7]time.Time {
	var days [7]time.Time
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}
