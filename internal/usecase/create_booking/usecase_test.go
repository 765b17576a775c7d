package create_booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/events"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/lock"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/intervals"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/availability"
	"github.com/m04kA/SMC-ClinicBooking/pkg/logger"
	"github.com/m04kA/SMC-ClinicBooking/pkg/metrics"
	"github.com/m04kA/SMC-ClinicBooking/pkg/ptr"
	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

type failingAppointments struct {
	AppointmentRepository
}

func (failingAppointments) Create(context.Context, *domain.Appointment) (*domain.Appointment, error) {
	return nil, errors.New("connection reset by peer")
}

type env struct {
	store     *memory.Store
	publisher *recordingPublisher
	metrics   *metrics.Metrics
	uc        *UseCase
}

func newEnv(t *testing.T, opts Options) *env {
	t.Helper()
	store := memory.NewStore()
	store.AddRoom(domain.Room{ID: 1, Kind: domain.ResourceWellnessRoom, Name: "Cold 1", Active: true, SortOrder: 1})
	store.AddRoom(domain.Room{ID: 2, Kind: domain.ResourceWellnessRoom, Name: "Cold 2", Active: true, SortOrder: 2})
	store.AddRoom(domain.Room{ID: 5, Kind: domain.ResourceTreatmentRoom, Name: "Treatment 1", Active: true})
	store.AddRoom(domain.Room{ID: 8, Kind: domain.ResourceConsultationRoom, Name: "Office 8", Active: true})
	store.AddProfessional(domain.Professional{ID: 20, Name: "Dr. Sokolova", Active: true})

	e := &env{
		store:     store,
		publisher: &recordingPublisher{},
		metrics:   metrics.NewWithRegistry("test", prometheus.NewRegistry()),
	}
	e.uc = e.build(store.Appointments(), opts)
	return e
}

func (e *env) build(appts AppointmentRepository, opts Options) *UseCase {
	lookup := intervals.NewLookup(e.store.Appointments(), e.store.RoomBookings())
	resolver := availability.NewResolver(e.store.Resources(), lookup, availability.Options{
		CloseTime:                types.MustTimeString("19:00"),
		AvailableWithoutSchedule: true,
	}, logger.NewNop())

	return NewUseCase(
		appts,
		e.store.RoomBookings(),
		e.store.Resources(),
		resolver,
		lock.NewLocalLocker(time.Second),
		e.publisher,
		e.store.TxManager(),
		e.metrics,
		opts,
		logger.NewNop(),
	)
}

func wellnessRequest(service domain.ServiceType, start string, roomID *int64) *Request {
	return &Request{
		PatientID:   100,
		ServiceType: service,
		ServiceID:   1,
		RoomID:      roomID,
		Date:        monday,
		StartTime:   types.MustTimeString(start),
		Amount:      40,
	}
}

func TestCreateBooking_WellnessPairIsMirrored(t *testing.T) {
	e := newEnv(t, Options{PreparationMinutes: 15})

	resp, err := e.uc.Execute(context.Background(), wellnessRequest(domain.ServiceColdBath, "10:00", ptr.Ptr(int64(1))))
	require.NoError(t, err)
	require.NotNil(t, resp.RoomBooking)

	assert.Equal(t, types.MustTimeString("10:30"), resp.RoomBooking.EndTime)
	assert.Equal(t, 15, resp.RoomBooking.BufferMinutes)
	require.NotNil(t, resp.RoomBooking.AppointmentID)
	assert.Equal(t, resp.Appointment.ID, *resp.RoomBooking.AppointmentID)

	pair := &domain.BookingPair{Appointment: resp.Appointment, Room: resp.RoomBooking}
	assert.True(t, pair.IsConsistent())
	assert.Nil(t, resp.Appointment.RoomID, "wellness room lives on the specialized record")

	require.Len(t, e.publisher.events, 1)
	assert.Equal(t, events.TypeBookingCreated, e.publisher.events[0].Type)
}

func TestCreateBooking_SecondWellnessBookingHitsBuffer(t *testing.T) {
	e := newEnv(t, Options{PreparationMinutes: 15})
	ctx := context.Background()
	room := ptr.Ptr(int64(1))

	_, err := e.uc.Execute(ctx, wellnessRequest(domain.ServiceColdBath, "10:00", room))
	require.NoError(t, err)

	_, err = e.uc.Execute(ctx, wellnessRequest(domain.ServiceInfraredSauna, "10:30", room))
	var conflictErr *domain.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, domain.ConflictBuffer, conflictErr.Conflicts[0].Kind)
	assert.Equal(t, 1.0, testutil.ToFloat64(
		e.metrics.BookingConflicts.WithLabelValues("test", "wellness_room", "buffer_conflict")))

	_, err = e.uc.Execute(ctx, wellnessRequest(domain.ServiceInfraredSauna, "10:45", room))
	assert.NoError(t, err)
}

func TestCreateBooking_ClosingTime(t *testing.T) {
	e := newEnv(t, Options{PreparationMinutes: 15})
	ctx := context.Background()

	_, err := e.uc.Execute(ctx, wellnessRequest(domain.ServiceCombinedTherapy, "18:50", ptr.Ptr(int64(1))))
	assert.ErrorIs(t, err, domain.ErrClosingTimeExceeded)

	_, err = e.uc.Execute(ctx, wellnessRequest(domain.ServiceColdBath, "18:30", ptr.Ptr(int64(1))))
	assert.NoError(t, err, "session ending exactly at close")
}

func TestCreateBooking_FirstFitPicksNextRoom(t *testing.T) {
	e := newEnv(t, Options{PreparationMinutes: 15, AutoAssignRooms: true})
	ctx := context.Background()

	first, err := e.uc.Execute(ctx, wellnessRequest(domain.ServiceColdBath, "10:00", nil))
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.RoomBooking.RoomID)

	second, err := e.uc.Execute(ctx, wellnessRequest(domain.ServiceColdBath, "10:15", nil))
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.RoomBooking.RoomID)

	_, err = e.uc.Execute(ctx, wellnessRequest(domain.ServiceColdBath, "10:15", nil))
	assert.ErrorIs(t, err, ErrNoRoomAvailable)
}

func TestCreateBooking_RoomRequiredWithoutAutoAssign(t *testing.T) {
	e := newEnv(t, Options{PreparationMinutes: 15})

	_, err := e.uc.Execute(context.Background(), wellnessRequest(domain.ServiceColdBath, "10:00", nil))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateBooking_MirrorFailureRollsBack(t *testing.T) {
	e := newEnv(t, Options{PreparationMinutes: 15})
	uc := e.build(failingAppointments{}, Options{PreparationMinutes: 15})
	ctx := context.Background()

	_, err := uc.Execute(ctx, wellnessRequest(domain.ServiceColdBath, "10:00", ptr.Ptr(int64(1))))
	require.ErrorIs(t, err, ErrInternal)

	list, err := e.store.RoomBookings().ListActiveByRoom(ctx, domain.KindWellness, 1, monday)
	require.NoError(t, err)
	assert.Empty(t, list, "specialized record is rolled back with the transaction")
	assert.Empty(t, e.publisher.events)
}

func TestCreateBooking_TreatmentBlocksProfessional(t *testing.T) {
	e := newEnv(t, Options{PreparationMinutes: 15})
	ctx := context.Background()

	req := &Request{
		PatientID:      100,
		ServiceType:    domain.ServiceMassage,
		ServiceID:      2,
		ProfessionalID: ptr.Ptr(int64(20)),
		RoomID:         ptr.Ptr(int64(5)),
		Date:           monday,
		StartTime:      types.MustTimeString("11:00"),
	}
	resp, err := e.uc.Execute(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.RoomBooking.BufferMinutes)
	assert.Equal(t, types.MustTimeString("12:00"), resp.Appointment.EndTime)

	// тот же специалист на консультации в пересекающееся время
	_, err = e.uc.Execute(ctx, &Request{
		PatientID:      101,
		ServiceType:    domain.ServiceConsultation,
		ServiceID:      3,
		ProfessionalID: ptr.Ptr(int64(20)),
		Date:           monday,
		StartTime:      types.MustTimeString("11:30"),
	})
	var conflictErr *domain.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, domain.ResourceProfessional, conflictErr.Resource.Kind)
}

func TestCreateBooking_ConsultationWithRoom(t *testing.T) {
	e := newEnv(t, Options{PreparationMinutes: 15})

	resp, err := e.uc.Execute(context.Background(), &Request{
		PatientID:      100,
		ServiceType:    domain.ServiceConsultation,
		ServiceID:      3,
		ProfessionalID: ptr.Ptr(int64(20)),
		RoomID:         ptr.Ptr(int64(8)),
		Date:           monday,
		StartTime:      types.MustTimeString("09:00"),
	})
	require.NoError(t, err)
	assert.Nil(t, resp.RoomBooking)
	require.NotNil(t, resp.Appointment.RoomID)
	assert.Equal(t, int64(8), *resp.Appointment.RoomID)
	assert.Equal(t, types.MustTimeString("09:30"), resp.Appointment.EndTime)
}

func TestCreateBooking_Validation(t *testing.T) {
	e := newEnv(t, Options{PreparationMinutes: 15})
	ctx := context.Background()

	tests := []struct {
		name    string
		req     *Request
		wantErr error
	}{
		{
			name:    "consultation without professional",
			req:     &Request{PatientID: 1, ServiceType: domain.ServiceConsultation, ServiceID: 1, Date: monday, StartTime: "10:00"},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown service type",
			req:     &Request{PatientID: 1, ServiceType: "hammam", ServiceID: 1, Date: monday, StartTime: "10:00"},
			wantErr: domain.ErrUnknownServiceType,
		},
		{
			name:    "crosses midnight",
			req:     &Request{PatientID: 1, ServiceType: domain.ServiceColdBath, ServiceID: 1, RoomID: ptr.Ptr(int64(1)), Date: monday, StartTime: "23:45"},
			wantErr: domain.ErrCrossesMidnight,
		},
		{
			name:    "unknown professional",
			req:     &Request{PatientID: 1, ServiceType: domain.ServiceFacial, ServiceID: 1, ProfessionalID: ptr.Ptr(int64(999)), RoomID: ptr.Ptr(int64(5)), Date: monday, StartTime: "10:00"},
			wantErr: ErrProfessionalNotFound,
		},
		{
			name:    "room of another kind",
			req:     &Request{PatientID: 1, ServiceType: domain.ServiceColdBath, ServiceID: 1, RoomID: ptr.Ptr(int64(5)), Date: monday, StartTime: "10:00"},
			wantErr: ErrRoomNotFound,
		},
		{
			name:    "missing start",
			req:     &Request{PatientID: 1, ServiceType: domain.ServiceColdBath, ServiceID: 1, Date: monday},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.uc.Execute(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateBooking_ConcurrentSameSlot(t *testing.T) {
	e := newEnv(t, Options{PreparationMinutes: 15})
	ctx := context.Background()

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.uc.Execute(ctx, wellnessRequest(domain.ServiceColdBath, "14:00", ptr.Ptr(int64(2))))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
}
