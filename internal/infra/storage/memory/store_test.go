package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/intervals"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/roombooking"
	"github.com/m04kA/SMC-ClinicBooking/pkg/ptr"
)

var day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func wellnessBooking(roomID int64, start, end string) *domain.RoomBooking {
	return &domain.RoomBooking{
		Kind:            domain.KindWellness,
		RoomID:          roomID,
		ServiceType:     domain.ServiceColdBath,
		PatientID:       1,
		Date:            day,
		StartTime:       domainTime(start),
		EndTime:         domainTime(end),
		DurationMinutes: 30,
		BufferMinutes:   15,
		Status:          domain.StatusConfirmed,
	}
}

func TestTxManager_RollbackRestoresState(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.TxManager().DoSerializable(ctx, func(txCtx context.Context) error {
		_, err := store.RoomBookings().Create(txCtx, wellnessBooking(1, "10:00", "10:30"))
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	list, err := store.RoomBookings().ListActiveByRoom(ctx, domain.KindWellness, 1, day)
	require.NoError(t, err)
	assert.Empty(t, list)

	created, err := store.RoomBookings().Create(ctx, wellnessBooking(1, "10:00", "10:30"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID, "id sequence is rolled back too")
}

func TestRoomBookings_ExclusionWithBuffer(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_, err := store.RoomBookings().Create(ctx, wellnessBooking(1, "10:00", "10:30"))
	require.NoError(t, err)

	_, err = store.RoomBookings().Create(ctx, wellnessBooking(1, "10:30", "11:00"))
	assert.ErrorIs(t, err, roombooking.ErrOverlap, "buffer window is still occupied")

	_, err = store.RoomBookings().Create(ctx, wellnessBooking(1, "10:45", "11:15"))
	assert.NoError(t, err)

	_, err = store.RoomBookings().Create(ctx, wellnessBooking(2, "10:00", "10:30"))
	assert.NoError(t, err, "other room")
}

func TestAppointments_CancelAndList(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	proID := ptr.Ptr(int64(5))

	a, err := store.Appointments().Create(ctx, &domain.Appointment{
		Kind:            domain.KindConsultation,
		ProfessionalID:  proID,
		Date:            day,
		StartTime:       "09:00",
		EndTime:         "09:30",
		DurationMinutes: 30,
		Status:          domain.StatusConfirmed,
	})
	require.NoError(t, err)

	_, err = store.Appointments().Create(ctx, &domain.Appointment{
		Kind:            domain.KindConsultation,
		ProfessionalID:  proID,
		Date:            day,
		StartTime:       "09:15",
		EndTime:         "09:45",
		DurationMinutes: 30,
		Status:          domain.StatusConfirmed,
	})
	assert.ErrorIs(t, err, appointment.ErrOverlap)

	lookup := intervals.NewLookup(store.Appointments(), store.RoomBookings())
	ref := domain.ResourceRef{Kind: domain.ResourceProfessional, ID: 5}

	ivs, err := lookup.ListIntervals(ctx, ref, day)
	require.NoError(t, err)
	require.Len(t, ivs, 1)
	assert.Equal(t, a.ID, ivs[0].BookingID)
	assert.Zero(t, ivs[0].BufferAfter)

	require.NoError(t, store.Appointments().Cancel(ctx, a.ID, "patient request"))

	ivs, err = lookup.ListIntervals(ctx, ref, day)
	require.NoError(t, err)
	assert.Empty(t, ivs)

	got, err := store.Appointments().GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
	assert.Equal(t, "patient request", *got.CancellationReason)

	assert.ErrorIs(t, store.Appointments().Cancel(ctx, 999, ""), appointment.ErrAppointmentNotFound)
}

func TestRepairs_ClaimDue(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := day.Add(10 * time.Hour)
	store.SetClock(func() time.Time { return now })

	first, err := store.Repairs().Enqueue(ctx, &domain.RepairTask{Action: domain.RepairCancelAppointment, AppointmentID: 1})
	require.NoError(t, err)
	_, err = store.Repairs().Enqueue(ctx, &domain.RepairTask{
		Action:        domain.RepairCancelAppointment,
		AppointmentID: 2,
		NextAttemptAt: now.Add(time.Hour),
	})
	require.NoError(t, err)

	due, err := store.Repairs().ClaimDue(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, first.ID, due[0].ID)

	require.NoError(t, store.Repairs().MarkDone(ctx, first.ID))
	assert.Len(t, store.PendingRepairs(), 1)
}
