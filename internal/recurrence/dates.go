package recurrence

import (
	"math"
	"time"
)

// Calendar-date arithmetic used by the occurrence generator. All functions
// treat their inputs as civil dates (midnight in some location) and return
// civil dates in the same location.

func AddDays(date time.Time, days int) time.Time {
	return date.AddDate(0, 0, days)
}

func AddWeeks(date time.Time, weeks int) time.Time {
	return AddDays(date, weeks*7)
}

// AddMonths shifts by whole months, clamping to the last day of the target
// month instead of rolling over (Jan 31 + 1 month = Feb 28/29, not Mar 2/3).
func AddMonths(date time.Time, months int) time.Time {
	y, m, d := date.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, date.Location()).AddDate(0, months, 0)
	if max := DaysInMonth(first.Year(), first.Month()); d > max {
		d = max
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, date.Location())
}

func AddYears(date time.Time, years int) time.Time {
	return AddMonths(date, years*12)
}

// DaysInMonth returns the number of days in the given month, leap years
// included.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()
}

// StartOfDay normalizes an instant to midnight of its calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of the calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// StartOfWeek returns the Sunday that starts the week containing t.
func StartOfWeek(t time.Time) time.Time {
	return AddDays(StartOfDay(t), -int(t.Weekday()))
}

// DaysBetween returns the whole-day difference between two civil dates.
// Rounding absorbs DST transitions, which make some local days 23 or 25
// hours long.
func DaysBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}

// MonthsBetween returns the calendar-month difference ignoring the day of
// month.
func MonthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}
