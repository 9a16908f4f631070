package recurrence

import (
	"time"

	"github.com/pbandeira/agendabot/internal/domain"
)

// maxIterations bounds the day-by-day walk to five years of daily steps so a
// malformed rule can never hang a caller.
const maxIterations = 365 * 5

// Expand projects one master appointment onto the concrete dates inside
// [viewStart, viewEnd] (both inclusive). A non-recurring master yields a copy
// of itself iff its date lies in the window. A recurring master yields one
// occurrence per matching day, each carrying the derived occurrence id and a
// back-reference to the master.
//
// The walk always starts at the anchor date even when it precedes the window;
// days before viewStart are visited but not emitted, so interval phase stays
// anchored to the series start.
func Expand(master *domain.Appointment, viewStart, viewEnd time.Time) []*domain.Appointment {
	if master.Recurrence == nil {
		if master.Date.Before(viewStart) || master.Date.After(viewEnd) {
			return nil
		}
		cp := *master
		return []*domain.Appointment{&cp}
	}

	rule := master.Recurrence
	interval := rule.Interval
	if interval < 1 {
		interval = 1
	}

	anchor := StartOfDay(master.Date)
	limit := viewEnd
	if rule.EndDate != nil {
		if ruleEnd := EndOfDay(*rule.EndDate); ruleEnd.Before(limit) {
			limit = ruleEnd
		}
	}

	var occurrences []*domain.Appointment
	day := anchor
	for i := 0; i < maxIterations && !day.After(limit); i++ {
		if !day.Before(viewStart) && matches(rule.Frequency, interval, rule.DaysOfWeek, anchor, day) {
			occurrences = append(occurrences, occurrenceOf(master, day))
		}
		day = AddDays(day, 1)
	}
	return occurrences
}

// matches decides whether the given day belongs to the series. Membership is
// evaluated per visited day; advancement is always one day, per frequency
// semantics:
//
//   - daily: whole-day distance from the anchor is a multiple of interval
//   - weekly: Sunday-based week distance is a non-negative multiple of
//     interval and the weekday is selected (anchor weekday when none are)
//   - monthly: month distance is a non-negative multiple of interval and the
//     day-of-month equals the anchor's. Months too short for the anchor day
//     simply produce nothing.
//   - yearly: year distance is a non-negative multiple of interval and
//     month + day match the anchor exactly, so a Feb 29 anchor only fires in
//     leap years.
func matches(freq domain.Frequency, interval int, daysOfWeek []int, anchor, day time.Time) bool {
	switch freq {
	case domain.FreqDaily:
		return DaysBetween(anchor, day)%interval == 0

	case domain.FreqWeekly:
		weeks := DaysBetween(StartOfWeek(anchor), StartOfWeek(day)) / 7
		if weeks < 0 || weeks%interval != 0 {
			return false
		}
		if len(daysOfWeek) == 0 {
			return day.Weekday() == anchor.Weekday()
		}
		for _, wd := range daysOfWeek {
			if int(day.Weekday()) == wd {
				return true
			}
		}
		return false

	case domain.FreqMonthly:
		months := MonthsBetween(anchor, day)
		return months >= 0 && months%interval == 0 && day.Day() == anchor.Day()

	case domain.FreqYearly:
		years := day.Year() - anchor.Year()
		return years >= 0 && years%interval == 0 &&
			day.Month() == anchor.Month() && day.Day() == anchor.Day()
	}
	return false
}

func occurrenceOf(master *domain.Appointment, date time.Time) *domain.Appointment {
	occ := *master
	occ.ID = domain.OccurrenceID(master.ID, date)
	occ.MasterID = master.ID
	occ.Date = date
	return &occ
}
