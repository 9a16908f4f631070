package service

import (
	"fmt"
	"log"
	"time"

	"github.com/pbandeira/agendabot/internal/domain"
	"github.com/pbandeira/agendabot/internal/recurrence"
	"github.com/pbandeira/agendabot/internal/storage"
)

// Clock abstracts wall-clock reads so the polling logic is testable at fixed
// instants.
type Clock interface {
	Now() time.Time
}

type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location != nil {
		return time.Now().In(c.Location)
	}
	return time.Now()
}

// doseFireWindow is how long after its scheduled instant a dose reminder
// stays eligible to fire. Wide enough to survive the one-minute polling
// granularity, narrow enough that an unacknowledged dose does not re-trigger
// all day; the dedup key prevents re-firing inside the window.
const doseFireWindow = 5 * time.Minute

// NotificationService decides, from the current wall clock, which occurrences
// warrant a new notification right now. The persisted log is the only
// cursor: deterministic ids make every poll idempotent, so there is no
// "last checked" state to lose.
type NotificationService struct {
	appointments  storage.AppointmentStore
	medicines     storage.MedicineStore
	notifications storage.NotificationStore
	clock         Clock
	reminderTime  string // HH:MM, when pre-day reminders become due
}

func NewNotificationService(
	appointments storage.AppointmentStore,
	medicines storage.MedicineStore,
	notifications storage.NotificationStore,
	clock Clock,
	reminderTime string,
) *NotificationService {
	if clock == nil {
		clock = SystemClock{}
	}
	if reminderTime == "" {
		reminderTime = "09:00"
	}
	return &NotificationService{
		appointments:  appointments,
		medicines:     medicines,
		notifications: notifications,
		clock:         clock,
		reminderTime:  reminderTime,
	}
}

// CheckReminders runs one poll and returns the notifications that fired
// during it. A second call with the same clock reading returns nothing: every
// candidate's dedup key already exists in the log. One bad record never
// aborts the poll; it is logged and the remaining candidates still fire.
func (s *NotificationService) CheckReminders() ([]*domain.Notification, error) {
	now := s.clock.Now()

	existing, err := s.notifications.ListNotifications()
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	seen := make(map[string]struct{}, len(existing))
	for _, n := range existing {
		seen[n.ID] = struct{}{}
	}

	var due []*domain.Notification
	add := func(n *domain.Notification) {
		if _, ok := seen[n.ID]; ok {
			return
		}
		seen[n.ID] = struct{}{}
		due = append(due, n)
	}

	s.collectAppointmentReminders(now, add)
	s.collectMedicineReminders(now, add)

	if len(due) == 0 {
		return nil, nil
	}
	if err := s.notifications.AppendNotifications(due); err != nil {
		return nil, fmt.Errorf("append notifications: %w", err)
	}
	return due, nil
}

// collectAppointmentReminders fires the pre-day reminder for every
// appointment occurring tomorrow, once "now" has passed today's reminder
// time. The notification is stamped with the reminder time, not the event
// time.
func (s *NotificationService) collectAppointmentReminders(now time.Time, add func(*domain.Notification)) {
	reminderAt, err := domain.ClockOn(now, s.reminderTime)
	if err != nil {
		log.Printf("Invalid reminder time %q: %v", s.reminderTime, err)
		return
	}
	if now.Before(reminderAt) {
		return
	}

	tomorrowStart := recurrence.AddDays(recurrence.StartOfDay(now), 1)
	tomorrowEnd := recurrence.EndOfDay(tomorrowStart)

	appointments, err := s.appointments.ListAppointments()
	if err != nil {
		log.Printf("Failed to list appointments: %v", err)
		return
	}

	for _, master := range appointments {
		if master.IsMedicine() {
			continue // dose slots have their own same-day trigger
		}
		for _, occ := range recurrence.Expand(master, tomorrowStart, tomorrowEnd) {
			if _, _, err := domain.ParseClock(occ.StartTime); err != nil {
				log.Printf("Skipping appointment %s: %v", occ.ID, err)
				continue
			}
			add(&domain.Notification{
				ID:        domain.AppointmentReminderID(occ.SourceID(), occ.Date),
				SourceID:  occ.SourceID(),
				Title:     fmt.Sprintf("Reminder for tomorrow: %s", occ.Title),
				Message:   fmt.Sprintf("%s at %s", occ.Title, occ.StartTime),
				Icon:      occ.Type,
				TriggerAt: reminderAt,
			})
		}
	}
}

// collectMedicineReminders fires a dose notification while "now" sits inside
// [doseTime, doseTime+window) of any dose slot active today.
func (s *NotificationService) collectMedicineReminders(now time.Time, add func(*domain.Notification)) {
	reminders, err := s.medicines.ListMedicineReminders()
	if err != nil {
		log.Printf("Failed to list medicine reminders: %v", err)
		return
	}

	today := recurrence.StartOfDay(now)
	for _, rem := range reminders {
		if !rem.ActiveOn(today) {
			continue
		}
		for _, t := range rem.Times {
			doseAt, err := domain.ClockOn(today, t)
			if err != nil {
				log.Printf("Skipping dose time for reminder %s: %v", rem.ID, err)
				continue
			}
			if now.Before(doseAt) || !now.Before(doseAt.Add(doseFireWindow)) {
				continue
			}
			add(&domain.Notification{
				ID:        domain.MedicineReminderID(rem.ID, today, t),
				SourceID:  rem.ID,
				Title:     fmt.Sprintf("Medicine time: %s", rem.Name),
				Message:   fmt.Sprintf("Take %s of %s", rem.Dosage, rem.Name),
				Icon:      domain.TypeMedicine,
				TriggerAt: doseAt,
			})
		}
	}
}

func (s *NotificationService) List() ([]*domain.Notification, error) {
	return s.notifications.ListNotifications()
}

// Unviewed returns pending notifications, most recent trigger first.
func (s *NotificationService) Unviewed() ([]*domain.Notification, error) {
	all, err := s.notifications.ListNotifications()
	if err != nil {
		return nil, err
	}
	var pending []*domain.Notification
	for _, n := range all {
		if !n.Viewed {
			pending = append(pending, n)
		}
	}
	return pending, nil
}

func (s *NotificationService) MarkViewed(id string) error {
	return s.notifications.MarkNotificationViewed(id)
}

func (s *NotificationService) MarkAllViewed() error {
	return s.notifications.MarkAllNotificationsViewed()
}
