// Package medicine turns dosing schedules into concrete dose instances.
//
// Bounded reminders (an end date, or a not-yet-supported frequency) are
// materialized into persisted appointment records when the reminder is saved.
// Continuous reminders (daily, no end date) are never persisted; consumers
// expand them on demand for whatever window they are rendering or polling.
package medicine

import (
	"fmt"
	"time"

	"github.com/pbandeira/agendabot/internal/domain"
	"github.com/pbandeira/agendabot/internal/recurrence"
)

// maxBulkInstances caps one bulk materialization across all days and times,
// guarding against misconfigured date ranges.
const maxBulkInstances = 1000

// Materialize generates the persisted dose records for a bounded reminder.
// Continuous reminders yield nothing here. EVERY_X_DAYS and SPECIFIC_DAYS are
// stored but intentionally produce no instances: their stride semantics are
// not defined yet, and guessing them would silently change dosing.
func Materialize(rem *domain.MedicineReminder) []*domain.Appointment {
	if !rem.ShouldMaterialize() || rem.EndDate == nil {
		return nil
	}
	if rem.Frequency != domain.MedicineDaily {
		// EVERY_X_DAYS / SPECIFIC_DAYS: not supported yet.
		return nil
	}

	start := recurrence.StartOfDay(rem.StartDate)
	end := recurrence.StartOfDay(*rem.EndDate)

	var instances []*domain.Appointment
	for day := start; !day.After(end); day = recurrence.AddDays(day, 1) {
		for _, t := range rem.Times {
			if len(instances) >= maxBulkInstances {
				return instances
			}
			instances = append(instances, doseRecord(rem, day, t, domain.DoseID(rem.ID, day, t), domain.KindMedicine))
		}
	}
	return instances
}

// ExpandContinuous computes the dose instances of a continuous reminder for
// the inclusive [windowStart, windowEnd] window. The instances carry the
// med-cont id prefix so they can never be confused with, or deduplicated
// away against, a materialized record.
func ExpandContinuous(rem *domain.MedicineReminder, windowStart, windowEnd time.Time) []*domain.Appointment {
	if !rem.IsContinuous() {
		return nil
	}

	day := recurrence.StartOfDay(windowStart)
	if start := recurrence.StartOfDay(rem.StartDate); day.Before(start) {
		day = start
	}

	var instances []*domain.Appointment
	for ; !day.After(windowEnd); day = recurrence.AddDays(day, 1) {
		for _, t := range rem.Times {
			instances = append(instances, doseRecord(rem, day, t, domain.ContinuousDoseID(rem.ID, day, t), domain.KindMedicineDose))
		}
	}
	return instances
}

// Dedupe drops instances whose id already appeared earlier in the list,
// keeping first occurrence order. Overlapping consumers merging windows rely
// on this before rendering.
func Dedupe(instances []*domain.Appointment) []*domain.Appointment {
	seen := make(map[string]struct{}, len(instances))
	out := instances[:0]
	for _, inst := range instances {
		if _, ok := seen[inst.ID]; ok {
			continue
		}
		seen[inst.ID] = struct{}{}
		out = append(out, inst)
	}
	return out
}

func doseRecord(rem *domain.MedicineReminder, day time.Time, hhmm, id string, kind domain.Kind) *domain.Appointment {
	return &domain.Appointment{
		ID:          id,
		MasterID:    rem.ID,
		Kind:        kind,
		Title:       fmt.Sprintf("%s (%s)", rem.Name, rem.Dosage),
		Type:        domain.TypeMedicine,
		Date:        day,
		StartTime:   hhmm,
		EndTime:     hhmm,
		Description: fmt.Sprintf("Take %s, dosage: %s", rem.Name, rem.Dosage),
	}
}
