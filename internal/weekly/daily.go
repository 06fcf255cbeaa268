package weekly

import (
	"time"

	"weekspend/internal/core"
)

// DayBucket accumulates one day's spending.
type DayBucket struct {
	Weekday string
	Date    string // YYYY-MM-DD
	Label   string // e.g. "15 Jan"
	Amount  core.Money
}

// DayPoint pairs the same weekday of both weeks for charting.
type DayPoint struct {
	Weekday      string
	Label        string
	CurrentDate  string
	PreviousDate string
	Current      core.Money
	Previous     core.Money
	Change       Change
}

// Daily accumulates a week's expenses into seven Monday-first buckets by exact
// calendar-date match and returns the buckets with their total. Expenses whose
// date matches no bucket are ignored.
func Daily(days [7]time.Time, subset []Dated, locale Locale) ([7]DayBucket, core.Money) {
	var buckets [7]DayBucket
	for i, d := range days {
		buckets[i] = DayBucket{
			Weekday: locale.Weekdays[i],
			Date:    d.Format(time.DateOnly),
			Label:   locale.DayLabel(d),
		}
	}
	idx := dayIndex(days)

	var total core.Money
	for _, e := range subset {
		i, ok := idx[e.Day]
		if !ok {
			continue
		}
		buckets[i].Amount = buckets[i].Amount.Add(e.Amount)
		total = total.Add(e.Amount)
	}
	return buckets, total
}

// Combine zips both weeks into the seven-entry chart series. Labels come
// from the current week.
func Combine(current, previous [7]DayBucket) []DayPoint {
	points := make([]DayPoint, len(current))
	for i := range current {
		points[i] = DayPoint{
			Weekday:      current[i].Weekday,
			Label:        current[i].Label,
			CurrentDate:  current[i].Date,
			PreviousDate: previous[i].Date,
			Current:      current[i].Amount,
			Previous:     previous[i].Amount,
			Change:       WeekOverWeek(current[i].Amount, previous[i].Amount),
		}
	}
	return points
}
