package reschedule_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/events"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/lock"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/intervals"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/availability"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/bookings"
	"github.com/m04kA/SMC-ClinicBooking/pkg/logger"
	"github.com/m04kA/SMC-ClinicBooking/pkg/metrics"
	"github.com/m04kA/SMC-ClinicBooking/pkg/ptr"
	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

type nopPublisher struct {
	published []events.Event
}

func (p *nopPublisher) Publish(_ context.Context, ev events.Event) error {
	p.published = append(p.published, ev)
	return nil
}

type env struct {
	store     *memory.Store
	publisher *nopPublisher
	uc        *UseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	store.AddRoom(domain.Room{ID: 1, Kind: domain.ResourceWellnessRoom, Name: "Sauna", Active: true})
	store.AddRoom(domain.Room{ID: 2, Kind: domain.ResourceWellnessRoom, Name: "Cold", Active: true})
	store.AddRoom(domain.Room{ID: 8, Kind: domain.ResourceConsultationRoom, Name: "Office", Active: true})
	store.AddProfessional(domain.Professional{ID: 20, Name: "Dr. Orlov", Active: true})
	store.AddProfessional(domain.Professional{ID: 21, Name: "Dr. Lebedeva", Active: true})

	lookup := intervals.NewLookup(store.Appointments(), store.RoomBookings())
	resolver := availability.NewResolver(store.Resources(), lookup, availability.Options{
		CloseTime:                types.MustTimeString("19:00"),
		AvailableWithoutSchedule: true,
	}, logger.NewNop())
	publisher := &nopPublisher{}

	uc := NewUseCase(
		bookings.NewService(store.Appointments(), store.RoomBookings(), logger.NewNop()),
		store.Appointments(),
		store.RoomBookings(),
		store.Resources(),
		resolver,
		lock.NewLocalLocker(time.Second),
		publisher,
		store.TxManager(),
		(*metrics.Metrics)(nil),
		Options{PreparationMinutes: 15},
		logger.NewNop(),
	)
	return &env{store: store, publisher: publisher, uc: uc}
}

// seedWellness создает пару wellness-записей напрямую в хранилище
func (e *env) seedWellness(t *testing.T, roomID int64, start string) (*domain.Appointment, *domain.RoomBooking) {
	t.Helper()
	ctx := context.Background()
	st := types.MustTimeString(start)
	end, err := domain.EndTime(st, 30)
	require.NoError(t, err)

	room, err := e.store.RoomBookings().Create(ctx, &domain.RoomBooking{
		Kind: domain.KindWellness, RoomID: roomID, ServiceType: domain.ServiceColdBath, ServiceID: 1,
		PatientID: 7, Date: monday, StartTime: st, EndTime: end, DurationMinutes: 30, BufferMinutes: 15,
		Status: domain.StatusConfirmed,
	})
	require.NoError(t, err)

	appt, err := e.store.Appointments().Create(ctx, &domain.Appointment{
		Kind: domain.KindWellness, PatientID: 7, ServiceID: 1, ServiceType: domain.ServiceColdBath,
		Date: monday, StartTime: st, EndTime: end, DurationMinutes: 30, Status: domain.StatusConfirmed,
	})
	require.NoError(t, err)
	require.NoError(t, e.store.RoomBookings().SetAppointmentID(ctx, domain.KindWellness, room.ID, appt.ID))
	room.AppointmentID = &appt.ID
	return appt, room
}

func TestReschedule_OverOwnSlot(t *testing.T) {
	e := newEnv(t)
	_, room := e.seedWellness(t, 1, "10:00")

	resp, err := e.uc.Execute(context.Background(), &Request{
		Source:    bookings.SourceWellness,
		ID:        room.ID,
		StartTime: ptr.Ptr(types.MustTimeString("10:15")),
	})
	require.NoError(t, err)

	assert.Equal(t, types.MustTimeString("10:15"), resp.RoomBooking.StartTime)
	assert.Equal(t, types.MustTimeString("10:45"), resp.RoomBooking.EndTime)
	assert.Equal(t, types.MustTimeString("10:45"), resp.Appointment.EndTime)

	pair, err := bookings.NewService(e.store.Appointments(), e.store.RoomBookings(), logger.NewNop()).
		GetPair(context.Background(), bookings.SourceWellness, room.ID)
	require.NoError(t, err)
	assert.True(t, pair.IsConsistent())

	require.Len(t, e.publisher.published, 1)
	assert.Equal(t, events.TypeBookingRescheduled, e.publisher.published[0].Type)
}

func TestReschedule_ConflictWithAnotherBooking(t *testing.T) {
	e := newEnv(t)
	e.seedWellness(t, 1, "11:00")
	_, room := e.seedWellness(t, 1, "09:00")

	// 10:30-11:00 + подготовка 15 заходит на сеанс в 11:00
	_, err := e.uc.Execute(context.Background(), &Request{
		Source:    bookings.SourceWellness,
		ID:        room.ID,
		StartTime: ptr.Ptr(types.MustTimeString("10:30")),
	})
	var conflictErr *domain.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, domain.ConflictBuffer, conflictErr.Conflicts[0].Kind)

	current, err := e.store.RoomBookings().GetByID(context.Background(), domain.KindWellness, room.ID)
	require.NoError(t, err)
	assert.Equal(t, types.MustTimeString("09:00"), current.StartTime, "nothing written on conflict")
}

func TestReschedule_MoveToAnotherRoomByAppointmentID(t *testing.T) {
	e := newEnv(t)
	e.seedWellness(t, 2, "10:00")
	appt, _ := e.seedWellness(t, 1, "10:00")

	_, err := e.uc.Execute(context.Background(), &Request{
		Source: bookings.SourceAppointment,
		ID:     appt.ID,
		RoomID: ptr.Ptr(int64(2)),
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	resp, err := e.uc.Execute(context.Background(), &Request{
		Source:    bookings.SourceAppointment,
		ID:        appt.ID,
		RoomID:    ptr.Ptr(int64(2)),
		StartTime: ptr.Ptr(types.MustTimeString("10:45")),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.RoomBooking.RoomID)
}

func TestReschedule_ClosingTime(t *testing.T) {
	e := newEnv(t)
	_, room := e.seedWellness(t, 1, "10:00")

	_, err := e.uc.Execute(context.Background(), &Request{
		Source:      bookings.SourceWellness,
		ID:          room.ID,
		StartTime:   ptr.Ptr(types.MustTimeString("18:50")),
		ServiceType: ptr.Ptr(domain.ServiceCombinedTherapy),
	})
	assert.ErrorIs(t, err, domain.ErrClosingTimeExceeded)
}

func TestReschedule_Rejections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	appt, room := e.seedWellness(t, 1, "10:00")

	_, err := e.uc.Execute(ctx, &Request{Source: bookings.SourceWellness, ID: room.ID})
	assert.ErrorIs(t, err, ErrInvalidInput, "no changes")

	_, err = e.uc.Execute(ctx, &Request{
		Source: bookings.SourceWellness, ID: room.ID, ServiceType: ptr.Ptr(domain.ServiceMassage),
	})
	assert.ErrorIs(t, err, ErrInvalidInput, "kind cannot change")

	_, err = e.uc.Execute(ctx, &Request{
		Source: bookings.SourceWellness, ID: 999, StartTime: ptr.Ptr(types.MustTimeString("12:00")),
	})
	assert.ErrorIs(t, err, ErrBookingNotFound)

	require.NoError(t, e.store.Appointments().Cancel(ctx, appt.ID, "patient request"))
	_, err = e.uc.Execute(ctx, &Request{
		Source: bookings.SourceWellness, ID: room.ID, StartTime: ptr.Ptr(types.MustTimeString("12:00")),
	})
	assert.ErrorIs(t, err, ErrCannotReschedule)
}

func TestReschedule_ConsultationChangesProfessional(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	busy, err := e.store.Appointments().Create(ctx, &domain.Appointment{
		Kind: domain.KindConsultation, PatientID: 1, ServiceID: 3, ServiceType: domain.ServiceConsultation,
		ProfessionalID: ptr.Ptr(int64(21)), Date: monday, StartTime: "15:00", EndTime: "15:30",
		DurationMinutes: 30, Status: domain.StatusConfirmed,
	})
	require.NoError(t, err)
	require.NotZero(t, busy.ID)

	consult, err := e.store.Appointments().Create(ctx, &domain.Appointment{
		Kind: domain.KindConsultation, PatientID: 2, ServiceID: 3, ServiceType: domain.ServiceConsultation,
		ProfessionalID: ptr.Ptr(int64(20)), RoomID: ptr.Ptr(int64(8)), Date: monday, StartTime: "15:00", EndTime: "15:30",
		DurationMinutes: 30, Status: domain.StatusConfirmed,
	})
	require.NoError(t, err)

	_, err = e.uc.Execute(ctx, &Request{
		Source: bookings.SourceConsultation, ID: consult.ID, ProfessionalID: ptr.Ptr(int64(21)),
	})
	var conflictErr *domain.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, domain.ResourceProfessional, conflictErr.Resource.Kind)

	resp, err := e.uc.Execute(ctx, &Request{
		Source: bookings.SourceConsultation, ID: consult.ID, ProfessionalID: ptr.Ptr(int64(21)),
		StartTime: ptr.Ptr(types.MustTimeString("15:30")),
	})
	require.NoError(t, err)
	assert.Nil(t, resp.RoomBooking)
	assert.Equal(t, int64(21), *resp.Appointment.ProfessionalID)
	assert.Equal(t, int64(8), *resp.Appointment.RoomID, "consultation room kept")
}
