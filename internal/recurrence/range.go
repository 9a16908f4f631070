package recurrence

import "time"

type ViewMode string

const (
	ViewDay   ViewMode = "day"
	ViewWeek  ViewMode = "week"
	ViewMonth ViewMode = "month"
)

// ViewRange resolves a view request to the inclusive [viewStart, viewEnd]
// window consumers feed to the generator and the medicine expander. Weeks run
// Sunday through Saturday.
func ViewRange(anchor time.Time, mode ViewMode) (time.Time, time.Time) {
	switch mode {
	case ViewWeek:
		start := StartOfWeek(anchor)
		return start, EndOfDay(AddDays(start, 6))
	case ViewMonth:
		y, m, _ := anchor.Date()
		start := time.Date(y, m, 1, 0, 0, 0, 0, anchor.Location())
		return start, EndOfDay(AddDays(AddMonths(start, 1), -1))
	default: // day
		return StartOfDay(anchor), EndOfDay(anchor)
	}
}
