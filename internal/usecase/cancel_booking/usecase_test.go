package cancel_booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/events"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/bookings"
	"github.com/m04kA/SMC-ClinicBooking/pkg/logger"
	"github.com/m04kA/SMC-ClinicBooking/pkg/metrics"
	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.events = append(p.events, ev)
	return nil
}

type failingAppointments struct{}

func (failingAppointments) Cancel(context.Context, int64, string) error {
	return errors.New("connection refused")
}

type env struct {
	store     *memory.Store
	publisher *recordingPublisher
	metrics   *metrics.Metrics
}

func newEnv() *env {
	return &env{
		store:     memory.NewStore(),
		publisher: &recordingPublisher{},
		metrics:   metrics.NewWithRegistry("test", prometheus.NewRegistry()),
	}
}

func (e *env) useCase(appts AppointmentRepository) *UseCase {
	return NewUseCase(
		bookings.NewService(e.store.Appointments(), e.store.RoomBookings(), logger.NewNop()),
		appts,
		e.store.RoomBookings(),
		e.store.Repairs(),
		e.publisher,
		e.metrics,
		logger.NewNop(),
	)
}

func (e *env) seedTreatment(t *testing.T, status domain.BookingStatus) (*domain.Appointment, *domain.RoomBooking) {
	t.Helper()
	ctx := context.Background()
	room, err := e.store.RoomBookings().Create(ctx, &domain.RoomBooking{
		Kind: domain.KindTreatment, RoomID: 5, ServiceType: domain.ServiceFacial, ServiceID: 1, PatientID: 3,
		Date: monday, StartTime: types.MustTimeString("13:00"), EndTime: types.MustTimeString("14:00"),
		DurationMinutes: 60, Status: status,
	})
	require.NoError(t, err)
	appt, err := e.store.Appointments().Create(ctx, &domain.Appointment{
		Kind: domain.KindTreatment, PatientID: 3, ServiceID: 1, ServiceType: domain.ServiceFacial,
		Date: monday, StartTime: types.MustTimeString("13:00"), EndTime: types.MustTimeString("14:00"),
		DurationMinutes: 60, Status: status,
	})
	require.NoError(t, err)
	require.NoError(t, e.store.RoomBookings().SetAppointmentID(ctx, domain.KindTreatment, room.ID, appt.ID))
	return appt, room
}

func TestCancel_BothRecords(t *testing.T) {
	e := newEnv()
	_, room := e.seedTreatment(t, domain.StatusConfirmed)
	uc := e.useCase(e.store.Appointments())

	resp, err := uc.Execute(context.Background(), &Request{Source: bookings.SourceTreatment, ID: room.ID, Reason: "sick"})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, resp.RoomBooking.Status)
	assert.Equal(t, domain.StatusCancelled, resp.Appointment.Status)
	require.NotNil(t, resp.Appointment.CancellationReason)
	assert.Equal(t, "sick", *resp.Appointment.CancellationReason)

	require.Len(t, e.publisher.events, 1)
	assert.Equal(t, events.TypeBookingCancelled, e.publisher.events[0].Type)
}

func TestCancel_IsIdempotent(t *testing.T) {
	e := newEnv()
	appt, _ := e.seedTreatment(t, domain.StatusConfirmed)
	uc := e.useCase(e.store.Appointments())
	ctx := context.Background()

	_, err := uc.Execute(ctx, &Request{Source: bookings.SourceAppointment, ID: appt.ID})
	require.NoError(t, err)
	_, err = uc.Execute(ctx, &Request{Source: bookings.SourceAppointment, ID: appt.ID})
	require.NoError(t, err)
}

func TestCancel_PartialWrite(t *testing.T) {
	e := newEnv()
	appt, room := e.seedTreatment(t, domain.StatusConfirmed)
	ctx := context.Background()

	_, err := e.useCase(failingAppointments{}).Execute(ctx, &Request{Source: bookings.SourceTreatment, ID: room.ID, Reason: "sick"})
	require.ErrorIs(t, err, domain.ErrPartialWrite)

	var pwErr *domain.PartialWriteError
	require.ErrorAs(t, err, &pwErr)
	assert.Equal(t, appt.ID, pwErr.AppointmentID)
	assert.Equal(t, room.ID, pwErr.RoomBookingID)
	assert.Equal(t, "room_booking", pwErr.Completed)
	assert.Equal(t, "appointment", pwErr.Failed)

	// специализированная запись осталась отмененной, прием нет
	storedRoom, err := e.store.RoomBookings().GetByID(ctx, domain.KindTreatment, room.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, storedRoom.Status)
	storedAppt, err := e.store.Appointments().GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, storedAppt.Status)

	repairs := e.store.PendingRepairs()
	require.Len(t, repairs, 1)
	assert.Equal(t, domain.RepairCancelAppointment, repairs[0].Action)
	assert.Equal(t, appt.ID, repairs[0].AppointmentID)

	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.PartialWrites.WithLabelValues("test", "cancel")))
	require.Len(t, e.publisher.events, 1)
	assert.Equal(t, events.TypePartialWrite, e.publisher.events[0].Type)

	// повторная отмена с рабочим репозиторием достраивает пару
	resp, err := e.useCase(e.store.Appointments()).Execute(ctx, &Request{Source: bookings.SourceTreatment, ID: room.ID, Reason: "sick"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, resp.Appointment.Status)
}

func TestCancel_CompletedRejected(t *testing.T) {
	e := newEnv()
	appt, _ := e.seedTreatment(t, domain.StatusCompleted)

	_, err := e.useCase(e.store.Appointments()).Execute(context.Background(), &Request{Source: bookings.SourceAppointment, ID: appt.ID})
	assert.ErrorIs(t, err, ErrCannotCancel)
}

func TestCancel_NotFoundAndValidation(t *testing.T) {
	e := newEnv()
	uc := e.useCase(e.store.Appointments())
	ctx := context.Background()

	_, err := uc.Execute(ctx, &Request{Source: bookings.SourceWellness, ID: 77})
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = uc.Execute(ctx, &Request{Source: bookings.SourceWellness, ID: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
