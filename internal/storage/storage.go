package storage

import "github.com/pbandeira/agendabot/internal/domain"

// The engine only assumes list-in/list-out contracts; both the sqlite store
// and the in-memory store used by tests satisfy them.

type AppointmentStore interface {
	ListAppointments() ([]*domain.Appointment, error)
	GetAppointment(id string) (*domain.Appointment, error)
	UpsertAppointment(a *domain.Appointment) error
	// DeleteAppointment removes the record and anything whose master
	// back-reference points at it.
	DeleteAppointment(id string) error
	// DeleteAppointmentsByMaster retracts every record generated from the
	// given master or reminder id.
	DeleteAppointmentsByMaster(masterID string) error
}

type MedicineStore interface {
	ListMedicineReminders() ([]*domain.MedicineReminder, error)
	GetMedicineReminder(id string) (*domain.MedicineReminder, error)
	UpsertMedicineReminder(m *domain.MedicineReminder) error
	DeleteMedicineReminder(id string) error
}

type NotificationStore interface {
	// ListNotifications returns the log ordered by trigger time descending.
	ListNotifications() ([]*domain.Notification, error)
	AppendNotifications(ns []*domain.Notification) error
	MarkNotificationViewed(id string) error
	MarkAllNotificationsViewed() error
}

type ShoppingStore interface {
	ListShoppingItems() ([]*domain.ShoppingItem, error)
	UpsertShoppingItem(item *domain.ShoppingItem) error
	DeleteShoppingItem(id string) error
	DeleteCompletedShoppingItems() error
}

// Store is the full persistence contract the application wires together.
type Store interface {
	AppointmentStore
	MedicineStore
	NotificationStore
	ShoppingStore
	Close() error
}
