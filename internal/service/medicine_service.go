package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pbandeira/agendabot/internal/domain"
	"github.com/pbandeira/agendabot/internal/medicine"
	"github.com/pbandeira/agendabot/internal/recurrence"
	"github.com/pbandeira/agendabot/internal/storage"
)

// MedicineService owns medicine reminder CRUD. Saving a bounded reminder
// retracts its previously materialized dose records and regenerates them; a
// continuous reminder never materializes anything.
type MedicineService struct {
	store        storage.MedicineStore
	appointments storage.AppointmentStore
}

func NewMedicineService(store storage.MedicineStore, appointments storage.AppointmentStore) *MedicineService {
	return &MedicineService{store: store, appointments: appointments}
}

func (s *MedicineService) Create(m *domain.MedicineReminder) (*domain.MedicineReminder, error) {
	if err := validateMedicineReminder(m); err != nil {
		return nil, err
	}

	m.ID = uuid.NewString()
	m.CreatedAt = time.Now()
	if err := s.store.UpsertMedicineReminder(m); err != nil {
		return nil, fmt.Errorf("create medicine reminder: %w", err)
	}
	if err := s.rematerialize(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MedicineService) Update(m *domain.MedicineReminder) error {
	if err := validateMedicineReminder(m); err != nil {
		return err
	}

	existing, err := s.store.GetMedicineReminder(m.ID)
	if err != nil {
		return fmt.Errorf("get medicine reminder: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("medicine reminder not found")
	}

	if err := s.store.UpsertMedicineReminder(m); err != nil {
		return fmt.Errorf("update medicine reminder: %w", err)
	}
	return s.rematerialize(m)
}

func (s *MedicineService) Delete(id string) error {
	if err := s.appointments.DeleteAppointmentsByMaster(id); err != nil {
		return fmt.Errorf("retract dose records: %w", err)
	}
	return s.store.DeleteMedicineReminder(id)
}

func (s *MedicineService) Get(id string) (*domain.MedicineReminder, error) {
	return s.store.GetMedicineReminder(id)
}

func (s *MedicineService) List() ([]*domain.MedicineReminder, error) {
	return s.store.ListMedicineReminders()
}

// rematerialize drops every dose record the reminder generated before and
// writes the current bulk expansion. Run on every create and update so stale
// instances never linger.
func (s *MedicineService) rematerialize(m *domain.MedicineReminder) error {
	if err := s.appointments.DeleteAppointmentsByMaster(m.ID); err != nil {
		return fmt.Errorf("retract dose records: %w", err)
	}
	for _, inst := range medicine.Materialize(m) {
		if err := s.appointments.UpsertAppointment(inst); err != nil {
			return fmt.Errorf("store dose record: %w", err)
		}
	}
	return nil
}

func validateMedicineReminder(m *domain.MedicineReminder) error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("medicine name cannot be empty")
	}
	if len(m.Times) == 0 {
		return fmt.Errorf("medicine reminder needs at least one dose time")
	}
	for _, t := range m.Times {
		if _, _, err := domain.ParseClock(t); err != nil {
			return fmt.Errorf("dose time: %w", err)
		}
	}

	switch m.Frequency {
	case domain.MedicineDaily, domain.MedicineEveryXDays, domain.MedicineSpecificDays:
	default:
		return fmt.Errorf("unknown medicine frequency %q", m.Frequency)
	}

	if m.StartDate.IsZero() {
		return fmt.Errorf("medicine reminder needs a start date")
	}
	m.StartDate = recurrence.StartOfDay(m.StartDate)
	if m.EndDate != nil {
		end := recurrence.StartOfDay(*m.EndDate)
		if end.Before(m.StartDate) {
			return fmt.Errorf("end date before start date")
		}
		m.EndDate = &end
	}
	return nil
}
