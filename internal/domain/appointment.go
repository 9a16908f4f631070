package domain

import "time"

type AppointmentType string

const (
	TypeBirthday    AppointmentType = "birthday"
	TypeDentist     AppointmentType = "dentist"
	TypeDoctor      AppointmentType = "doctor"
	TypeNote        AppointmentType = "note"
	TypeTravel      AppointmentType = "travel"
	TypeManicure    AppointmentType = "manicure"
	TypeHairdresser AppointmentType = "hairdresser"
	TypeSupermarket AppointmentType = "supermarket"
	TypeVisit       AppointmentType = "visit"
	TypeMedicine    AppointmentType = "medicine"
	TypeExercise    AppointmentType = "exercise"
	TypeWorkMeeting AppointmentType = "work_meeting"
	TypeStudies     AppointmentType = "studies"
	TypeDefault     AppointmentType = "default"
)

type Frequency string

const (
	FreqDaily   Frequency = "daily"
	FreqWeekly  Frequency = "weekly"
	FreqMonthly Frequency = "monthly"
	FreqYearly  Frequency = "yearly"
)

// RecurrenceRule describes how a master appointment repeats.
type RecurrenceRule struct {
	Frequency Frequency  `json:"frequency"`
	Interval  int        `json:"interval"`            // every N units, >= 1
	EndDate   *time.Time `json:"end_date,omitempty"`  // inclusive, nil = unbounded
	DaysOfWeek []int     `json:"days_of_week,omitempty"` // 0 (Sun) .. 6 (Sat), WEEKLY only
}

// Kind distinguishes where an appointment record came from.
type Kind string

const (
	// KindPlain is a user-created appointment (possibly a recurring master).
	KindPlain Kind = "plain"
	// KindMedicine is a dose record bulk-materialized from a bounded
	// medicine reminder.
	KindMedicine Kind = "medicine"
	// KindMedicineDose is an ephemeral dose instance expanded on demand
	// from a continuous medicine reminder. Never persisted.
	KindMedicineDose Kind = "medicine_dose"
)

// Appointment is either a persisted master record or a computed occurrence.
// For a master, Date is the anchor/start date of the series. For an
// occurrence, Date is the concrete date and MasterID points back to the
// series; occurrences are never persisted.
type Appointment struct {
	ID          string
	MasterID    string // set on generated occurrences only
	Kind        Kind
	Title       string
	Type        AppointmentType
	Date        time.Time // calendar date, midnight local
	StartTime   string    // HH:MM
	EndTime     string    // HH:MM, may equal StartTime
	Location    string
	Description string
	Recurrence  *RecurrenceRule
	CreatedAt   time.Time
}

func (a *Appointment) IsRecurring() bool {
	return a.Recurrence != nil
}

// IsInstance reports whether this record is a computed occurrence of a
// recurring series rather than a stored master.
func (a *Appointment) IsInstance() bool {
	return a.MasterID != ""
}

// IsMedicine reports whether this record represents a medicine dose of
// either kind.
func (a *Appointment) IsMedicine() bool {
	return a.Kind == KindMedicine || a.Kind == KindMedicineDose
}

// SourceID returns the id notifications should reference: the master for an
// occurrence, the record itself otherwise.
func (a *Appointment) SourceID() string {
	if a.MasterID != "" {
		return a.MasterID
	}
	return a.ID
}

// OccurrenceID builds the deterministic id of one concrete occurrence of a
// recurring series.
func OccurrenceID(masterID string, date time.Time) string {
	return masterID + "_" + date.Format("2006-01-02")
}
