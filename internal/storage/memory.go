package storage

import (
	"sort"
	"sync"

	"github.com/pbandeira/agendabot/internal/domain"
)

// MemoryStore is an in-memory Store used by tests and by anything that wants
// list-in/list-out semantics without a database. All methods are safe for
// concurrent use.
type MemoryStore struct {
	mu            sync.Mutex
	appointments  map[string]*domain.Appointment
	medicines     map[string]*domain.MedicineReminder
	shopping      map[string]*domain.ShoppingItem
	notifications map[string]*domain.Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		appointments:  make(map[string]*domain.Appointment),
		medicines:     make(map[string]*domain.MedicineReminder),
		shopping:      make(map[string]*domain.ShoppingItem),
		notifications: make(map[string]*domain.Notification),
	}
}

func (s *MemoryStore) Close() error { return nil }

// === Appointments ===

func (s *MemoryStore) UpsertAppointment(a *domain.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.appointments[a.ID] = &cp
	return nil
}

func (s *MemoryStore) GetAppointment(id string) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) ListAppointments() ([]*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) DeleteAppointment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.appointments, id)
	for k, a := range s.appointments {
		if a.MasterID == id {
			delete(s.appointments, k)
		}
	}
	return nil
}

func (s *MemoryStore) DeleteAppointmentsByMaster(masterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, a := range s.appointments {
		if a.MasterID == masterID {
			delete(s.appointments, k)
		}
	}
	return nil
}

// === Medicine reminders ===

func (s *MemoryStore) UpsertMedicineReminder(m *domain.MedicineReminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.medicines[m.ID] = &cp
	return nil
}

func (s *MemoryStore) GetMedicineReminder(id string) (*domain.MedicineReminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.medicines[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (s *MemoryStore) ListMedicineReminders() ([]*domain.MedicineReminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.MedicineReminder, 0, len(s.medicines))
	for _, m := range s.medicines {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) DeleteMedicineReminder(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.medicines, id)
	return nil
}

// === Shopping list ===

func (s *MemoryStore) UpsertShoppingItem(item *domain.ShoppingItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *item
	s.shopping[item.ID] = &cp
	return nil
}

func (s *MemoryStore) ListShoppingItems() ([]*domain.ShoppingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.ShoppingItem, 0, len(s.shopping))
	for _, item := range s.shopping {
		cp := *item
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) DeleteShoppingItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.shopping, id)
	return nil
}

func (s *MemoryStore) DeleteCompletedShoppingItems() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, item := range s.shopping {
		if item.Completed {
			delete(s.shopping, k)
		}
	}
	return nil
}

// === Notifications ===

func (s *MemoryStore) ListNotifications() ([]*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TriggerAt.Equal(out[j].TriggerAt) {
			return out[i].TriggerAt.After(out[j].TriggerAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) AppendNotifications(ns []*domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range ns {
		if _, ok := s.notifications[n.ID]; ok {
			continue
		}
		cp := *n
		s.notifications[n.ID] = &cp
	}
	return nil
}

func (s *MemoryStore) MarkNotificationViewed(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.notifications[id]; ok {
		n.Viewed = true
	}
	return nil
}

func (s *MemoryStore) MarkAllNotificationsViewed() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		n.Viewed = true
	}
	return nil
}
