package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pbandeira/agendabot/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

const dateLayout = "2006-01-02"

// Storage is the sqlite-backed implementation of Store. Calendar dates are
// kept as YYYY-MM-DD text and re-interpreted in the configured location, so
// recurrence arithmetic always runs on local civil dates.
type Storage struct {
	db  *sql.DB
	loc *time.Location
}

func New(dbPath string, loc *time.Location) (*Storage, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if loc == nil {
		loc = time.Local
	}

	s := &Storage{db: db, loc: loc}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS appointments (
			id TEXT PRIMARY KEY,
			master_id TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL DEFAULT 'plain',
			title TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'default',
			date TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			location TEXT DEFAULT '',
			description TEXT DEFAULT '',
			recurrence TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_date ON appointments(date)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_master_id ON appointments(master_id)`,
		`CREATE TABLE IF NOT EXISTS medicine_reminders (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			dosage TEXT DEFAULT '',
			times TEXT NOT NULL,
			frequency TEXT NOT NULL DEFAULT 'daily',
			every_x_days INTEGER DEFAULT 0,
			specific_days TEXT DEFAULT '[]',
			start_date TEXT NOT NULL,
			end_date TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS shopping_items (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			completed INTEGER DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			source_id TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT DEFAULT '',
			icon TEXT DEFAULT 'default',
			trigger_at DATETIME NOT NULL,
			viewed INTEGER DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_trigger_at ON notifications(trigger_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

func (s *Storage) parseDate(v string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, v, s.loc)
}

// === Appointments ===

func (s *Storage) UpsertAppointment(a *domain.Appointment) error {
	var recurrence string
	if a.Recurrence != nil {
		data, err := json.Marshal(a.Recurrence)
		if err != nil {
			return fmt.Errorf("marshal recurrence: %w", err)
		}
		recurrence = string(data)
	}

	_, err := s.db.Exec(
		`INSERT INTO appointments (id, master_id, kind, title, type, date, start_time, end_time, location, description, recurrence)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			master_id = excluded.master_id,
			kind = excluded.kind,
			title = excluded.title,
			type = excluded.type,
			date = excluded.date,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			location = excluded.location,
			description = excluded.description,
			recurrence = excluded.recurrence`,
		a.ID, a.MasterID, a.Kind, a.Title, a.Type, a.Date.Format(dateLayout),
		a.StartTime, a.EndTime, a.Location, a.Description, recurrence,
	)
	return err
}

func (s *Storage) GetAppointment(id string) (*domain.Appointment, error) {
	row := s.db.QueryRow(
		`SELECT id, master_id, kind, title, type, date, start_time, end_time, location, description, recurrence, created_at
		 FROM appointments WHERE id = ?`,
		id,
	)
	a, err := s.scanAppointment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (s *Storage) ListAppointments() ([]*domain.Appointment, error) {
	rows, err := s.db.Query(
		`SELECT id, master_id, kind, title, type, date, start_time, end_time, location, description, recurrence, created_at
		 FROM appointments ORDER BY date ASC, start_time ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appointments []*domain.Appointment
	for rows.Next() {
		a, err := s.scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Storage) scanAppointment(row rowScanner) (*domain.Appointment, error) {
	a := &domain.Appointment{}
	var date, recurrence string
	if err := row.Scan(&a.ID, &a.MasterID, &a.Kind, &a.Title, &a.Type, &date,
		&a.StartTime, &a.EndTime, &a.Location, &a.Description, &recurrence, &a.CreatedAt); err != nil {
		return nil, err
	}

	var err error
	if a.Date, err = s.parseDate(date); err != nil {
		return nil, fmt.Errorf("parse appointment date: %w", err)
	}
	if recurrence != "" {
		rule := &domain.RecurrenceRule{}
		if err := json.Unmarshal([]byte(recurrence), rule); err != nil {
			return nil, fmt.Errorf("unmarshal recurrence: %w", err)
		}
		if rule.EndDate != nil {
			end := rule.EndDate.In(s.loc)
			rule.EndDate = &end
		}
		a.Recurrence = rule
	}
	return a, nil
}

func (s *Storage) DeleteAppointment(id string) error {
	_, err := s.db.Exec(`DELETE FROM appointments WHERE id = ? OR master_id = ?`, id, id)
	return err
}

func (s *Storage) DeleteAppointmentsByMaster(masterID string) error {
	_, err := s.db.Exec(`DELETE FROM appointments WHERE master_id = ?`, masterID)
	return err
}

// === Medicine reminders ===

func (s *Storage) UpsertMedicineReminder(m *domain.MedicineReminder) error {
	times, err := json.Marshal(m.Times)
	if err != nil {
		return fmt.Errorf("marshal times: %w", err)
	}
	specificDays, err := json.Marshal(m.SpecificDays)
	if err != nil {
		return fmt.Errorf("marshal specific days: %w", err)
	}

	var endDate any
	if m.EndDate != nil {
		endDate = m.EndDate.Format(dateLayout)
	}

	_, err = s.db.Exec(
		`INSERT INTO medicine_reminders (id, name, dosage, times, frequency, every_x_days, specific_days, start_date, end_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			dosage = excluded.dosage,
			times = excluded.times,
			frequency = excluded.frequency,
			every_x_days = excluded.every_x_days,
			specific_days = excluded.specific_days,
			start_date = excluded.start_date,
			end_date = excluded.end_date`,
		m.ID, m.Name, m.Dosage, string(times), m.Frequency, m.EveryXDays,
		string(specificDays), m.StartDate.Format(dateLayout), endDate,
	)
	return err
}

func (s *Storage) GetMedicineReminder(id string) (*domain.MedicineReminder, error) {
	row := s.db.QueryRow(
		`SELECT id, name, dosage, times, frequency, every_x_days, specific_days, start_date, end_date, created_at
		 FROM medicine_reminders WHERE id = ?`,
		id,
	)
	m, err := s.scanMedicineReminder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (s *Storage) ListMedicineReminders() ([]*domain.MedicineReminder, error) {
	rows, err := s.db.Query(
		`SELECT id, name, dosage, times, frequency, every_x_days, specific_days, start_date, end_date, created_at
		 FROM medicine_reminders ORDER BY name ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*domain.MedicineReminder
	for rows.Next() {
		m, err := s.scanMedicineReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, m)
	}
	return reminders, rows.Err()
}

func (s *Storage) scanMedicineReminder(row rowScanner) (*domain.MedicineReminder, error) {
	m := &domain.MedicineReminder{}
	var times, specificDays, startDate string
	var endDate sql.NullString
	if err := row.Scan(&m.ID, &m.Name, &m.Dosage, &times, &m.Frequency,
		&m.EveryXDays, &specificDays, &startDate, &endDate, &m.CreatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(times), &m.Times); err != nil {
		return nil, fmt.Errorf("unmarshal times: %w", err)
	}
	if specificDays != "" {
		if err := json.Unmarshal([]byte(specificDays), &m.SpecificDays); err != nil {
			return nil, fmt.Errorf("unmarshal specific days: %w", err)
		}
	}

	var err error
	if m.StartDate, err = s.parseDate(startDate); err != nil {
		return nil, fmt.Errorf("parse start date: %w", err)
	}
	if endDate.Valid {
		end, err := s.parseDate(endDate.String)
		if err != nil {
			return nil, fmt.Errorf("parse end date: %w", err)
		}
		m.EndDate = &end
	}
	return m, nil
}

func (s *Storage) DeleteMedicineReminder(id string) error {
	_, err := s.db.Exec(`DELETE FROM medicine_reminders WHERE id = ?`, id)
	return err
}

// === Shopping list ===

func (s *Storage) UpsertShoppingItem(item *domain.ShoppingItem) error {
	_, err := s.db.Exec(
		`INSERT INTO shopping_items (id, text, completed) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET text = excluded.text, completed = excluded.completed`,
		item.ID, item.Text, item.Completed,
	)
	return err
}

func (s *Storage) ListShoppingItems() ([]*domain.ShoppingItem, error) {
	rows, err := s.db.Query(
		`SELECT id, text, completed, created_at FROM shopping_items ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.ShoppingItem
	for rows.Next() {
		item := &domain.ShoppingItem{}
		if err := rows.Scan(&item.ID, &item.Text, &item.Completed, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Storage) DeleteShoppingItem(id string) error {
	_, err := s.db.Exec(`DELETE FROM shopping_items WHERE id = ?`, id)
	return err
}

func (s *Storage) DeleteCompletedShoppingItems() error {
	_, err := s.db.Exec(`DELETE FROM shopping_items WHERE completed = 1`)
	return err
}

// === Notifications ===

func (s *Storage) ListNotifications() ([]*domain.Notification, error) {
	rows, err := s.db.Query(
		`SELECT id, source_id, title, message, icon, trigger_at, viewed
		 FROM notifications ORDER BY trigger_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		n := &domain.Notification{}
		if err := rows.Scan(&n.ID, &n.SourceID, &n.Title, &n.Message, &n.Icon, &n.TriggerAt, &n.Viewed); err != nil {
			return nil, err
		}
		n.TriggerAt = n.TriggerAt.In(s.loc)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (s *Storage) AppendNotifications(ns []*domain.Notification) error {
	for _, n := range ns {
		_, err := s.db.Exec(
			`INSERT OR IGNORE INTO notifications (id, source_id, title, message, icon, trigger_at, viewed)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			n.ID, n.SourceID, n.Title, n.Message, n.Icon, n.TriggerAt, n.Viewed,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) MarkNotificationViewed(id string) error {
	_, err := s.db.Exec(`UPDATE notifications SET viewed = 1 WHERE id = ?`, id)
	return err
}

func (s *Storage) MarkAllNotificationsViewed() error {
	_, err := s.db.Exec(`UPDATE notifications SET viewed = 1`)
	return err
}
