package domain

import (
	"fmt"
	"strings"
	"time"
)

// Notification is a persisted log entry for one fired reminder. The id
// encodes the source event and trigger slot, so a poll that runs twice can
// never create the same notification twice.
type Notification struct {
	ID        string
	SourceID  string // master appointment id or medicine reminder id
	Title     string
	Message   string
	Icon      AppointmentType
	TriggerAt time.Time
	Viewed    bool
}

// AppointmentReminderID builds the dedup key for the pre-day reminder of one
// appointment occurrence.
func AppointmentReminderID(sourceID string, occurrenceDate time.Time) string {
	return fmt.Sprintf("app-%s-%s-pre", sourceID, occurrenceDate.Format("2006-01-02"))
}

// MedicineReminderID builds the dedup key for one dose slot on one day.
func MedicineReminderID(reminderID string, day time.Time, hhmm string) string {
	return fmt.Sprintf("med-%s-%s-%s", reminderID, day.Format("2006-01-02"), strings.ReplaceAll(hhmm, ":", ""))
}
