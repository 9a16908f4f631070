package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbandeira/agendabot/internal/domain"
)

func testStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"), time.UTC)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAppointmentRoundTrip(t *testing.T) {
	s := testStorage(t)

	end := day(2024, time.June, 30)
	a := &domain.Appointment{
		ID:          "a1",
		Kind:        domain.KindPlain,
		Title:       "Standup",
		Type:        domain.TypeWorkMeeting,
		Date:        day(2024, time.January, 1),
		StartTime:   "09:30",
		EndTime:     "09:45",
		Location:    "office",
		Description: "daily sync",
		Recurrence: &domain.RecurrenceRule{
			Frequency:  domain.FreqWeekly,
			Interval:   1,
			EndDate:    &end,
			DaysOfWeek: []int{1, 3, 5},
		},
	}
	require.NoError(t, s.UpsertAppointment(a))

	got, err := s.GetAppointment("a1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Standup", got.Title)
	assert.Equal(t, domain.KindPlain, got.Kind)
	assert.True(t, got.Date.Equal(day(2024, time.January, 1)))
	require.NotNil(t, got.Recurrence)
	assert.Equal(t, domain.FreqWeekly, got.Recurrence.Frequency)
	assert.Equal(t, []int{1, 3, 5}, got.Recurrence.DaysOfWeek)
	require.NotNil(t, got.Recurrence.EndDate)
	assert.True(t, got.Recurrence.EndDate.Equal(end))
}

func TestAppointmentWithoutRecurrence(t *testing.T) {
	s := testStorage(t)

	require.NoError(t, s.UpsertAppointment(&domain.Appointment{
		ID: "a1", Kind: domain.KindPlain, Title: "One-off", Type: domain.TypeDefault,
		Date: day(2024, time.March, 10), StartTime: "10:00", EndTime: "10:00",
	}))

	got, err := s.GetAppointment("a1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.Recurrence)
}

func TestGetAppointmentMissing(t *testing.T) {
	s := testStorage(t)

	got, err := s.GetAppointment("nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpsertAppointmentReplaces(t *testing.T) {
	s := testStorage(t)

	a := &domain.Appointment{
		ID: "a1", Kind: domain.KindPlain, Title: "Before", Type: domain.TypeDefault,
		Date: day(2024, time.March, 10), StartTime: "10:00", EndTime: "10:00",
	}
	require.NoError(t, s.UpsertAppointment(a))
	a.Title = "After"
	a.StartTime = "11:00"
	require.NoError(t, s.UpsertAppointment(a))

	all, err := s.ListAppointments()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "After", all[0].Title)
	assert.Equal(t, "11:00", all[0].StartTime)
}

func TestDeleteAppointmentCascades(t *testing.T) {
	s := testStorage(t)

	require.NoError(t, s.UpsertAppointment(&domain.Appointment{
		ID: "master", Kind: domain.KindPlain, Title: "x", Type: domain.TypeDefault,
		Date: day(2024, time.March, 10), StartTime: "10:00", EndTime: "10:00",
	}))
	require.NoError(t, s.UpsertAppointment(&domain.Appointment{
		ID: "med-master-2024-03-10-1000", MasterID: "master", Kind: domain.KindMedicine,
		Title: "x", Type: domain.TypeMedicine,
		Date: day(2024, time.March, 10), StartTime: "10:00", EndTime: "10:00",
	}))

	require.NoError(t, s.DeleteAppointment("master"))

	all, err := s.ListAppointments()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDeleteAppointmentsByMaster(t *testing.T) {
	s := testStorage(t)

	require.NoError(t, s.UpsertAppointment(&domain.Appointment{
		ID: "keep", Kind: domain.KindPlain, Title: "x", Type: domain.TypeDefault,
		Date: day(2024, time.March, 10), StartTime: "10:00", EndTime: "10:00",
	}))
	for _, id := range []string{"med-r1-2024-03-10-0800", "med-r1-2024-03-11-0800"} {
		require.NoError(t, s.UpsertAppointment(&domain.Appointment{
			ID: id, MasterID: "r1", Kind: domain.KindMedicine, Title: "x",
			Type: domain.TypeMedicine, Date: day(2024, time.March, 10),
			StartTime: "08:00", EndTime: "08:00",
		}))
	}

	require.NoError(t, s.DeleteAppointmentsByMaster("r1"))

	all, err := s.ListAppointments()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "keep", all[0].ID)
}

func TestMedicineReminderRoundTrip(t *testing.T) {
	s := testStorage(t)

	end := day(2024, time.June, 30)
	require.NoError(t, s.UpsertMedicineReminder(&domain.MedicineReminder{
		ID:        "r1",
		Name:      "Ibuprofen",
		Dosage:    "200mg",
		Times:     []string{"08:00", "20:00"},
		Frequency: domain.MedicineDaily,
		StartDate: day(2024, time.January, 1),
		EndDate:   &end,
	}))

	got, err := s.GetMedicineReminder("r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"08:00", "20:00"}, got.Times)
	assert.True(t, got.StartDate.Equal(day(2024, time.January, 1)))
	require.NotNil(t, got.EndDate)
	assert.True(t, got.EndDate.Equal(end))
	assert.False(t, got.IsContinuous())
}

func TestMedicineReminderNullEndDate(t *testing.T) {
	s := testStorage(t)

	require.NoError(t, s.UpsertMedicineReminder(&domain.MedicineReminder{
		ID:        "r1",
		Name:      "Vitamin D",
		Times:     []string{"08:00"},
		Frequency: domain.MedicineDaily,
		StartDate: day(2024, time.January, 1),
	}))

	got, err := s.GetMedicineReminder("r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.EndDate)
	assert.True(t, got.IsContinuous())
}

func TestShoppingItems(t *testing.T) {
	s := testStorage(t)

	require.NoError(t, s.UpsertShoppingItem(&domain.ShoppingItem{ID: "i1", Text: "milk"}))
	require.NoError(t, s.UpsertShoppingItem(&domain.ShoppingItem{ID: "i2", Text: "bread", Completed: true}))

	items, err := s.ListShoppingItems()
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NoError(t, s.DeleteCompletedShoppingItems())
	items, err = s.ListShoppingItems()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "milk", items[0].Text)
}

func TestNotificationsAppendIdempotent(t *testing.T) {
	s := testStorage(t)

	n := &domain.Notification{
		ID:        "app-a1-2024-03-10-pre",
		SourceID:  "a1",
		Title:     "Reminder",
		Icon:      domain.TypeDefault,
		TriggerAt: time.Date(2024, time.March, 9, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.AppendNotifications([]*domain.Notification{n}))
	require.NoError(t, s.AppendNotifications([]*domain.Notification{n}))

	all, err := s.ListNotifications()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].Viewed)
}

func TestNotificationsOrderAndViewed(t *testing.T) {
	s := testStorage(t)

	require.NoError(t, s.AppendNotifications([]*domain.Notification{
		{ID: "old", SourceID: "a", Title: "old", Icon: domain.TypeDefault,
			TriggerAt: time.Date(2024, time.March, 8, 9, 0, 0, 0, time.UTC)},
		{ID: "new", SourceID: "b", Title: "new", Icon: domain.TypeDefault,
			TriggerAt: time.Date(2024, time.March, 9, 9, 0, 0, 0, time.UTC)},
	}))

	all, err := s.ListNotifications()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "new", all[0].ID)

	require.NoError(t, s.MarkNotificationViewed("new"))
	all, err = s.ListNotifications()
	require.NoError(t, err)
	assert.True(t, all[0].Viewed)
	assert.False(t, all[1].Viewed)

	require.NoError(t, s.MarkAllNotificationsViewed())
	all, err = s.ListNotifications()
	require.NoError(t, err)
	assert.True(t, all[1].Viewed)
}
