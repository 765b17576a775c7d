package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-ClinicBooking/pkg/logger"
	"github.com/m04kA/SMC-ClinicBooking/pkg/ptr"
	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

var day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func seedPair(t *testing.T, store *memory.Store) (*domain.Appointment, *domain.RoomBooking) {
	t.Helper()
	ctx := context.Background()

	room, err := store.RoomBookings().Create(ctx, &domain.RoomBooking{
		Kind:            domain.KindTreatment,
		RoomID:          4,
		ServiceType:     domain.ServiceFacial,
		ProfessionalID:  ptr.Ptr(int64(9)),
		PatientID:       1,
		Date:            day,
		StartTime:       types.MustTimeString("12:00"),
		EndTime:         types.MustTimeString("13:00"),
		DurationMinutes: 60,
		Status:          domain.StatusConfirmed,
		Amount:          80,
	})
	require.NoError(t, err)

	appt, err := store.Appointments().Create(ctx, &domain.Appointment{
		Kind:            domain.KindTreatment,
		PatientID:       1,
		ServiceType:     domain.ServiceFacial,
		ProfessionalID:  ptr.Ptr(int64(9)),
		Date:            day,
		StartTime:       types.MustTimeString("12:00"),
		EndTime:         types.MustTimeString("13:00"),
		DurationMinutes: 60,
		Status:          domain.StatusConfirmed,
		Amount:          80,
	})
	require.NoError(t, err)
	require.NoError(t, store.RoomBookings().SetAppointmentID(ctx, domain.KindTreatment, room.ID, appt.ID))

	room, err = store.RoomBookings().GetByID(ctx, domain.KindTreatment, room.ID)
	require.NoError(t, err)
	return appt, room
}

func TestService_GetPair(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.Appointments(), store.RoomBookings(), logger.NewNop())
	appt, room := seedPair(t, store)
	ctx := context.Background()

	byRoom, err := svc.GetPair(ctx, SourceTreatment, room.ID)
	require.NoError(t, err)
	require.NotNil(t, byRoom.Appointment)
	assert.Equal(t, appt.ID, byRoom.Appointment.ID)
	assert.True(t, byRoom.IsConsistent())

	byAppt, err := svc.GetPair(ctx, SourceAppointment, appt.ID)
	require.NoError(t, err)
	require.NotNil(t, byAppt.Room)
	assert.Equal(t, room.ID, byAppt.Room.ID)
}

func TestService_GetPair_NotFound(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.Appointments(), store.RoomBookings(), logger.NewNop())

	_, err := svc.GetPair(context.Background(), SourceWellness, 42)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = svc.GetPair(context.Background(), SourceAppointment, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_GetBooking_ReportsInconsistency(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.Appointments(), store.RoomBookings(), logger.NewNop())
	appt, room := seedPair(t, store)
	ctx := context.Background()

	require.NoError(t, store.RoomBookings().Cancel(ctx, domain.KindTreatment, room.ID, "no-show"))

	resp, err := svc.GetBooking(ctx, SourceAppointment, appt.ID)
	require.NoError(t, err)
	assert.False(t, resp.Consistent)
	assert.Equal(t, "cancelled", resp.RoomBooking.Status)
	assert.Equal(t, "confirmed", resp.Appointment.Status)
}

func TestParseSource(t *testing.T) {
	src, err := ParseSource("wellness")
	require.NoError(t, err)
	assert.Equal(t, domain.KindWellness, src.BookingKind())
	assert.False(t, src.IsAppointment())

	_, err = ParseSource("spa")
	assert.ErrorIs(t, err, ErrInvalidSource)
}
