package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbandeira/agendabot/internal/domain"
	"github.com/pbandeira/agendabot/internal/storage"
)

func medicineService(store *storage.MemoryStore) *MedicineService {
	return NewMedicineService(store, store)
}

func doseRecords(t *testing.T, store *storage.MemoryStore, masterID string) []*domain.Appointment {
	t.Helper()
	all, err := store.ListAppointments()
	require.NoError(t, err)
	var out []*domain.Appointment
	for _, a := range all {
		if a.MasterID == masterID {
			out = append(out, a)
		}
	}
	return out
}

func TestCreateBoundedReminderMaterializes(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := medicineService(store)

	end := date(2024, time.January, 3)
	created, err := svc.Create(&domain.MedicineReminder{
		Name:      "Ibuprofen",
		Dosage:    "200mg",
		Times:     []string{"08:00", "20:00"},
		Frequency: domain.MedicineDaily,
		StartDate: date(2024, time.January, 1),
		EndDate:   &end,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	records := doseRecords(t, store, created.ID)
	require.Len(t, records, 6)
	assert.Equal(t, domain.KindMedicine, records[0].Kind)
	assert.Equal(t, domain.DoseID(created.ID, date(2024, time.January, 1), "08:00"), records[0].ID)
}

func TestCreateContinuousReminderMaterializesNothing(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := medicineService(store)

	created, err := svc.Create(&domain.MedicineReminder{
		Name:      "Vitamin D",
		Dosage:    "1000 IU",
		Times:     []string{"08:00"},
		Frequency: domain.MedicineDaily,
		StartDate: date(2024, time.January, 1),
	})
	require.NoError(t, err)
	assert.Empty(t, doseRecords(t, store, created.ID))
}

func TestUpdateReminderRetractsAndRegenerates(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := medicineService(store)

	end := date(2024, time.January, 5)
	created, err := svc.Create(&domain.MedicineReminder{
		Name:      "Ibuprofen",
		Dosage:    "200mg",
		Times:     []string{"08:00"},
		Frequency: domain.MedicineDaily,
		StartDate: date(2024, time.January, 1),
		EndDate:   &end,
	})
	require.NoError(t, err)
	require.Len(t, doseRecords(t, store, created.ID), 5)

	// Shrink the range and add a dose time: the old five records must not
	// survive alongside the new six.
	newEnd := date(2024, time.January, 3)
	created.Times = []string{"08:00", "20:00"}
	created.EndDate = &newEnd
	require.NoError(t, svc.Update(created))

	records := doseRecords(t, store, created.ID)
	require.Len(t, records, 6)
	for _, r := range records {
		assert.False(t, r.Date.After(newEnd))
	}
}

func TestUpdateToContinuousRetractsAll(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := medicineService(store)

	end := date(2024, time.January, 5)
	created, err := svc.Create(&domain.MedicineReminder{
		Name:      "Ibuprofen",
		Dosage:    "200mg",
		Times:     []string{"08:00"},
		Frequency: domain.MedicineDaily,
		StartDate: date(2024, time.January, 1),
		EndDate:   &end,
	})
	require.NoError(t, err)
	require.NotEmpty(t, doseRecords(t, store, created.ID))

	created.EndDate = nil
	require.NoError(t, svc.Update(created))
	assert.Empty(t, doseRecords(t, store, created.ID))
}

func TestDeleteReminderCascades(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := medicineService(store)

	end := date(2024, time.January, 3)
	created, err := svc.Create(&domain.MedicineReminder{
		Name:      "Ibuprofen",
		Dosage:    "200mg",
		Times:     []string{"08:00"},
		Frequency: domain.MedicineDaily,
		StartDate: date(2024, time.January, 1),
		EndDate:   &end,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(created.ID))

	gone, err := svc.Get(created.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.Empty(t, doseRecords(t, store, created.ID))
}

func TestMedicineReminderValidation(t *testing.T) {
	svc := medicineService(storage.NewMemoryStore())
	start := date(2024, time.January, 10)
	badEnd := date(2024, time.January, 5)

	cases := []struct {
		name string
		m    *domain.MedicineReminder
	}{
		{"empty name", &domain.MedicineReminder{
			Name: " ", Times: []string{"08:00"}, Frequency: domain.MedicineDaily, StartDate: start,
		}},
		{"no times", &domain.MedicineReminder{
			Name: "x", Frequency: domain.MedicineDaily, StartDate: start,
		}},
		{"bad time", &domain.MedicineReminder{
			Name: "x", Times: []string{"8am"}, Frequency: domain.MedicineDaily, StartDate: start,
		}},
		{"unknown frequency", &domain.MedicineReminder{
			Name: "x", Times: []string{"08:00"}, Frequency: "weekly", StartDate: start,
		}},
		{"zero start date", &domain.MedicineReminder{
			Name: "x", Times: []string{"08:00"}, Frequency: domain.MedicineDaily,
		}},
		{"end before start", &domain.MedicineReminder{
			Name: "x", Times: []string{"08:00"}, Frequency: domain.MedicineDaily,
			StartDate: start, EndDate: &badEnd,
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(tc.m)
			assert.Error(t, err)
		})
	}
}
