package scheduler

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbandeira/agendabot/config"
	"github.com/pbandeira/agendabot/internal/domain"
	"github.com/pbandeira/agendabot/internal/service"
	"github.com/pbandeira/agendabot/internal/storage"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type captureSender struct {
	chatID   int64
	messages []string
}

func (s *captureSender) SendMessage(chatID int64, text string) error {
	s.chatID = chatID
	s.messages = append(s.messages, text)
	return nil
}

func testScheduler(store *storage.MemoryStore, now time.Time) (*Scheduler, *captureSender) {
	cfg := &config.Config{OwnerTelegramID: 42, Timezone: time.UTC}
	svc := service.NewNotificationService(store, store, store, fixedClock{now}, "09:00")
	sender := &captureSender{}
	s := New(cfg, svc)
	s.SetSender(sender)
	return s, sender
}

func TestCheckRemindersDeliversOneBatch(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.UpsertMedicineReminder(&domain.MedicineReminder{
		ID:        "r1",
		Name:      "Ibuprofen",
		Dosage:    "200mg",
		Times:     []string{"08:00", "08:02"},
		Frequency: domain.MedicineDaily,
		StartDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}))

	s, sender := testScheduler(store, time.Date(2024, time.March, 9, 8, 3, 0, 0, time.UTC))
	s.checkReminders()

	// Both dose slots fired, but as a single message.
	require.Len(t, sender.messages, 1)
	assert.Equal(t, int64(42), sender.chatID)
	assert.Equal(t, 2, strings.Count(sender.messages[0], "Medicine time"))
}

func TestCheckRemindersQuietWhenNothingFires(t *testing.T) {
	store := storage.NewMemoryStore()
	s, sender := testScheduler(store, time.Date(2024, time.March, 9, 8, 0, 0, 0, time.UTC))
	s.checkReminders()
	assert.Empty(t, sender.messages)
}

func TestCheckRemindersSecondTickSendsNothing(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.UpsertMedicineReminder(&domain.MedicineReminder{
		ID:        "r1",
		Name:      "Ibuprofen",
		Dosage:    "200mg",
		Times:     []string{"08:00"},
		Frequency: domain.MedicineDaily,
		StartDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}))

	s, sender := testScheduler(store, time.Date(2024, time.March, 9, 8, 1, 0, 0, time.UTC))
	s.checkReminders()
	s.checkReminders()
	assert.Len(t, sender.messages, 1)
}

func TestFormatBatch(t *testing.T) {
	text := formatBatch([]*domain.Notification{
		{Title: "Medicine time: Ibuprofen", Message: "Take 200mg of Ibuprofen"},
	})
	assert.Contains(t, text, "<b>Reminders</b>")
	assert.Contains(t, text, "Medicine time: Ibuprofen")
	assert.Contains(t, text, "Take 200mg of Ibuprofen")
}
