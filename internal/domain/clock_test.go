package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("08:30")
	require.NoError(t, err)
	assert.Equal(t, 8, h)
	assert.Equal(t, 30, m)

	h, m, err = ParseClock("23:59")
	require.NoError(t, err)
	assert.Equal(t, 23, h)
	assert.Equal(t, 59, m)

	for _, bad := range []string{"", "8am", "24:00", "12:60", "-1:00", "12", "12:3x"} {
		_, _, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestClockOn(t *testing.T) {
	day := time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)

	at, err := ClockOn(day, "14:05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 9, 14, 5, 0, 0, time.UTC), at)

	_, err = ClockOn(day, "nope")
	assert.Error(t, err)
}

func TestNotificationIDs(t *testing.T) {
	day := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "app-a1-2024-03-10-pre", AppointmentReminderID("a1", day))
	assert.Equal(t, "med-r1-2024-03-10-0800", MedicineReminderID("r1", day, "08:00"))
	assert.Equal(t, "med-r1-2024-03-10-0800", DoseID("r1", day, "08:00"))
	assert.Equal(t, "med-cont-r1-2024-03-10-2030", ContinuousDoseID("r1", day, "20:30"))
	assert.Equal(t, "a1_2024-03-10", OccurrenceID("a1", day))
}
