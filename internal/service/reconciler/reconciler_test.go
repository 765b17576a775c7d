package reconciler

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

// flakyAppointments отказывает в отмене первые failures раз
type flakyAppointments struct {
	*memory.Appointments
	failures int
}

func (f *flakyAppointments) Cancel(ctx context.Context, id int64, reason string) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("connection refused")
	}
	return f.Appointments.Cancel(ctx, id, reason)
}

type env struct {
	store     *memory.Store
	now       time.Time
	publisher *recordingPublisher
	metrics   *metrics.Metrics
}

func newEnv() *env {
	e := &env{
		store:     memory.NewStore(),
		now:       monday.Add(8 * time.Hour),
		publisher: &recordingPublisher{},
		metrics:   metrics.NewWithRegistry("test", prometheus.NewRegistry()),
	}
	e.store.SetClock(func() time.Time { return e.now })
	return e
}

func (e *env) reconciler(appts AppointmentRepository, maxAttempts int) *Reconciler {
	r := New(
		e.store.Repairs(),
		appts,
		e.store.RoomBookings(),
		e.store.TxManager(),
		e.publisher,
		e.metrics,
		Options{Interval: time.Second, BatchSize: 10, MaxAttempts: maxAttempts, Backoff: time.Minute},
		logger.NewNop(),
	)
	r.now = func() time.Time { return e.now }
	return r
}

// seedPartialCancel пара, у которой отменена только специализированная запись
func (e *env) seedPartialCancel(t *testing.T) (*domain.Appointment, *domain.RoomBooking, *domain.RepairTask) {
	t.Helper()
	ctx := context.Background()
	room, err := e.store.RoomBookings().Create(ctx, &domain.RoomBooking{
		Kind: domain.KindTreatment, RoomID: 5, ServiceType: domain.ServiceFacial, ServiceID: 1, PatientID: 3,
		Date: monday, StartTime: types.MustTimeString("13:00"), EndTime: types.MustTimeString("14:00"),
		DurationMinutes: 60, Status: domain.StatusConfirmed,
	})
	require.NoError(t, err)
	appt, err := e.store.Appointments().Create(ctx, &domain.Appointment{
		Kind: domain.KindTreatment, PatientID: 3, ServiceID: 1, ServiceType: domain.ServiceFacial,
		Date: monday, StartTime: types.MustTimeString("13:00"), EndTime: types.MustTimeString("14:00"),
		DurationMinutes: 60, Status: domain.StatusConfirmed,
	})
	require.NoError(t, err)
	require.NoError(t, e.store.RoomBookings().Cancel(ctx, domain.KindTreatment, room.ID, "patient request"))

	task, err := e.store.Repairs().Enqueue(ctx, &domain.RepairTask{
		Action:        domain.RepairCancelAppointment,
		Kind:          domain.KindTreatment,
		AppointmentID: appt.ID,
		RoomBookingID: room.ID,
		Reason:        "patient request",
	})
	require.NoError(t, err)
	return appt, room, task
}

func TestReconciler_CompletesPartialCancel(t *testing.T) {
	e := newEnv()
	appt, _, _ := e.seedPartialCancel(t)

	processed, err := e.reconciler(e.store.Appointments(), 3).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	stored, err := e.store.Appointments().GetByID(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	assert.Empty(t, e.store.PendingRepairs())

	require.Len(t, e.publisher.events, 1)
	assert.Equal(t, events.TypeRepairCompleted, e.publisher.events[0].Type)
	assert.Equal(t, string(domain.StatusCancelled), e.publisher.events[0].Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.RepairAttempts.WithLabelValues("test", resultSuccess)))
}

func TestReconciler_AlreadyCancelledIsSuccess(t *testing.T) {
	e := newEnv()
	appt, _, _ := e.seedPartialCancel(t)
	require.NoError(t, e.store.Appointments().Cancel(context.Background(), appt.ID, "manual"))

	processed, err := e.reconciler(e.store.Appointments(), 3).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Empty(t, e.store.PendingRepairs())
}

func TestReconciler_RetriesWithBackoff(t *testing.T) {
	e := newEnv()
	appt, _, _ := e.seedPartialCancel(t)
	appts := &flakyAppointments{Appointments: e.store.Appointments(), failures: 1}
	r := e.reconciler(appts, 3)

	processed, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	pending := e.store.PendingRepairs()
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].Attempts)
	require.NotNil(t, pending[0].LastError)
	assert.Contains(t, *pending[0].LastError, "connection refused")
	assert.Equal(t, e.now.Add(time.Minute), pending[0].NextAttemptAt)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.RepairAttempts.WithLabelValues("test", resultFailed)))

	// Срок еще не наступил
	processed, err = r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, processed)

	e.now = e.now.Add(2 * time.Minute)
	processed, err = r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Empty(t, e.store.PendingRepairs())

	stored, err := e.store.Appointments().GetByID(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
}

func TestReconciler_GivesUpAfterMaxAttempts(t *testing.T) {
	e := newEnv()
	e.seedPartialCancel(t)
	appts := &flakyAppointments{Appointments: e.store.Appointments(), failures: 100}
	r := e.reconciler(appts, 2)

	_, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, e.store.PendingRepairs(), 1)

	e.now = e.now.Add(time.Hour)
	_, err = r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, e.store.PendingRepairs())
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.RepairAttempts.WithLabelValues("test", resultGaveUp)))
	assert.Empty(t, e.publisher.events)
}

func TestReconciler_CancelsRoomBooking(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	room, err := e.store.RoomBookings().Create(ctx, &domain.RoomBooking{
		Kind: domain.KindWellness, RoomID: 1, ServiceType: domain.ServiceColdBath, PatientID: 3,
		Date: monday, StartTime: types.MustTimeString("10:00"), EndTime: types.MustTimeString("10:30"),
		DurationMinutes: 30, BufferMinutes: 15, Status: domain.StatusConfirmed,
	})
	require.NoError(t, err)
	_, err = e.store.Repairs().Enqueue(ctx, &domain.RepairTask{
		Action:        domain.RepairCancelRoomBooking,
		Kind:          domain.KindWellness,
		RoomBookingID: room.ID,
		Reason:        "mirror cancelled",
	})
	require.NoError(t, err)

	processed, err := e.reconciler(e.store.Appointments(), 3).RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	stored, err := e.store.RoomBookings().GetByID(ctx, domain.KindWellness, room.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
}

func TestReconciler_RunStopsOnContextCancel(t *testing.T) {
	e := newEnv()
	e.seedPartialCancel(t)
	r := e.reconciler(e.store.Appointments(), 3)
	r.opts.Interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(e.store.PendingRepairs()) == 0 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}
}
