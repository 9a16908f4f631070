package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pbandeira/agendabot/internal/domain"
	"github.com/pbandeira/agendabot/internal/medicine"
	"github.com/pbandeira/agendabot/internal/recurrence"
	"github.com/pbandeira/agendabot/internal/storage"
)

// AppointmentService owns master appointment CRUD and the merged occurrence
// views (appointments plus continuous medicine doses).
type AppointmentService struct {
	store     storage.AppointmentStore
	medicines storage.MedicineStore
}

func NewAppointmentService(store storage.AppointmentStore, medicines storage.MedicineStore) *AppointmentService {
	return &AppointmentService{store: store, medicines: medicines}
}

func (s *AppointmentService) Create(a *domain.Appointment) (*domain.Appointment, error) {
	if err := validateAppointment(a); err != nil {
		return nil, err
	}

	a.ID = uuid.NewString()
	a.MasterID = ""
	a.Kind = domain.KindPlain
	a.Date = recurrence.StartOfDay(a.Date)
	a.CreatedAt = time.Now()

	if err := s.store.UpsertAppointment(a); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return a, nil
}

// Update replaces a whole master record. Occurrences of a series cannot be
// edited individually; an occurrence id is rejected here.
func (s *AppointmentService) Update(a *domain.Appointment) error {
	if a.MasterID != "" || strings.Contains(a.ID, "_") {
		return fmt.Errorf("cannot edit a single occurrence of a recurring series")
	}
	if err := validateAppointment(a); err != nil {
		return err
	}

	existing, err := s.store.GetAppointment(a.ID)
	if err != nil {
		return fmt.Errorf("get appointment: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("appointment not found")
	}

	a.Kind = existing.Kind
	a.Date = recurrence.StartOfDay(a.Date)
	if err := s.store.UpsertAppointment(a); err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	return nil
}

func (s *AppointmentService) Delete(id string) error {
	return s.store.DeleteAppointment(id)
}

func (s *AppointmentService) Get(id string) (*domain.Appointment, error) {
	return s.store.GetAppointment(id)
}

func (s *AppointmentService) List() ([]*domain.Appointment, error) {
	return s.store.ListAppointments()
}

// OccurrencesInRange expands every stored appointment into the inclusive
// [viewStart, viewEnd] window and merges in on-demand dose instances from
// continuous medicine reminders. The result is deduplicated by id and ordered
// by date then start time.
func (s *AppointmentService) OccurrencesInRange(viewStart, viewEnd time.Time) ([]*domain.Appointment, error) {
	appointments, err := s.store.ListAppointments()
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	var occurrences []*domain.Appointment
	for _, a := range appointments {
		occurrences = append(occurrences, recurrence.Expand(a, viewStart, viewEnd)...)
	}

	reminders, err := s.medicines.ListMedicineReminders()
	if err != nil {
		return nil, fmt.Errorf("list medicine reminders: %w", err)
	}
	for _, rem := range reminders {
		occurrences = append(occurrences, medicine.ExpandContinuous(rem, viewStart, viewEnd)...)
	}

	occurrences = medicine.Dedupe(occurrences)
	sort.Slice(occurrences, func(i, j int) bool {
		if !occurrences[i].Date.Equal(occurrences[j].Date) {
			return occurrences[i].Date.Before(occurrences[j].Date)
		}
		if occurrences[i].StartTime != occurrences[j].StartTime {
			return occurrences[i].StartTime < occurrences[j].StartTime
		}
		return occurrences[i].ID < occurrences[j].ID
	})
	return occurrences, nil
}

// Agenda resolves a day/week/month view request around the anchor date.
func (s *AppointmentService) Agenda(anchor time.Time, mode recurrence.ViewMode) ([]*domain.Appointment, error) {
	viewStart, viewEnd := recurrence.ViewRange(anchor, mode)
	return s.OccurrencesInRange(viewStart, viewEnd)
}

func validateAppointment(a *domain.Appointment) error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("appointment title cannot be empty")
	}
	if _, _, err := domain.ParseClock(a.StartTime); err != nil {
		return fmt.Errorf("start time: %w", err)
	}
	if _, _, err := domain.ParseClock(a.EndTime); err != nil {
		return fmt.Errorf("end time: %w", err)
	}
	if a.Type == "" {
		a.Type = domain.TypeDefault
	}

	if rule := a.Recurrence; rule != nil {
		if rule.Interval < 1 {
			rule.Interval = 1
		}
		switch rule.Frequency {
		case domain.FreqDaily, domain.FreqMonthly, domain.FreqYearly:
		case domain.FreqWeekly:
			if len(rule.DaysOfWeek) == 0 {
				return fmt.Errorf("weekly recurrence needs at least one weekday")
			}
			for _, wd := range rule.DaysOfWeek {
				if wd < 0 || wd > 6 {
					return fmt.Errorf("invalid weekday %d", wd)
				}
			}
		default:
			return fmt.Errorf("unknown recurrence frequency %q", rule.Frequency)
		}
	}
	return nil
}
