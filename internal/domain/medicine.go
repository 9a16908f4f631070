package domain

import (
	"fmt"
	"strings"
	"time"
)

type MedicineFrequency string

const (
	MedicineDaily MedicineFrequency = "daily"
	// MedicineEveryXDays and MedicineSpecificDays are accepted as data but
	// do not produce dose instances yet.
	MedicineEveryXDays   MedicineFrequency = "every_x_days"
	MedicineSpecificDays MedicineFrequency = "specific_days"
)

// MedicineReminder is a dosing schedule: one dose per listed time per active
// day. A DAILY reminder without an end date is continuous and is expanded on
// demand instead of being materialized into appointment records.
type MedicineReminder struct {
	ID           string
	Name         string
	Dosage       string
	Times        []string // HH:MM, one dose instance per time per day
	Frequency    MedicineFrequency
	EveryXDays   int
	SpecificDays []int // 0 (Sun) .. 6 (Sat)
	StartDate    time.Time
	EndDate      *time.Time // inclusive, nil = unbounded
	CreatedAt    time.Time
}

// IsContinuous reports whether the reminder is an unbounded daily schedule
// that must never be bulk-materialized.
func (m *MedicineReminder) IsContinuous() bool {
	return m.Frequency == MedicineDaily && m.EndDate == nil
}

// ShouldMaterialize reports whether saving the reminder triggers bulk
// generation of dose records.
func (m *MedicineReminder) ShouldMaterialize() bool {
	return !m.IsContinuous()
}

// ActiveOn reports whether the reminder produces doses on the given day.
// Only DAILY schedules are active; the other frequencies are inert until
// their semantics are defined.
func (m *MedicineReminder) ActiveOn(day time.Time) bool {
	if m.Frequency != MedicineDaily {
		return false
	}
	if day.Before(m.StartDate) {
		return false
	}
	if m.EndDate != nil && day.After(*m.EndDate) {
		return false
	}
	return true
}

// DoseID builds the deterministic id of one bulk-materialized dose record.
func DoseID(reminderID string, date time.Time, hhmm string) string {
	return fmt.Sprintf("med-%s-%s-%s", reminderID, date.Format("2006-01-02"), strings.ReplaceAll(hhmm, ":", ""))
}

// ContinuousDoseID builds the id of an on-demand dose instance. The distinct
// prefix keeps it from colliding with a materialized record for the same slot.
func ContinuousDoseID(reminderID string, date time.Time, hhmm string) string {
	return fmt.Sprintf("med-cont-%s-%s-%s", reminderID, date.Format("2006-01-02"), strings.ReplaceAll(hhmm, ":", ""))
}
