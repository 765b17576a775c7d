package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/config"
	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/memory"
	repairRepo "github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/repair"
	resourceRepo "github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/resource"
	roomBookingRepo "github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/roombooking"
	"github.com/m04kA/SMC-ClinicBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-ClinicBooking/pkg/logger"
	"github.com/m04kA/SMC-ClinicBooking/pkg/metrics"
	"github.com/m04kA/SMC-ClinicBooking/pkg/txmanager"
	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

type appointmentStore interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	ListActiveForResource(ctx context.Context, ref domain.ResourceRef, date time.Time) ([]*domain.Appointment, error)
	UpdateSchedule(ctx context.Context, a *domain.Appointment) error
	Cancel(ctx context.Context, id int64, reason string) error
}

type roomBookingStore interface {
	Create(ctx context.Context, b *domain.RoomBooking) (*domain.RoomBooking, error)
	GetByID(ctx context.Context, kind domain.BookingKind, id int64) (*domain.RoomBooking, error)
	GetByAppointmentID(ctx context.Context, kind domain.BookingKind, appointmentID int64) (*domain.RoomBooking, error)
	ListActiveByRoom(ctx context.Context, kind domain.BookingKind, roomID int64, date time.Time) ([]*domain.RoomBooking, error)
	SetAppointmentID(ctx context.Context, kind domain.BookingKind, id, appointmentID int64) error
	UpdateSchedule(ctx context.Context, b *domain.RoomBooking) error
	Cancel(ctx context.Context, kind domain.BookingKind, id int64, reason string) error
}

type resourceStore interface {
	GetResource(ctx context.Context, ref domain.ResourceRef) (*domain.Resource, error)
	GetProfessional(ctx context.Context, id int64) (*domain.Professional, error)
	GetRoom(ctx context.Context, kind domain.ResourceKind, id int64) (*domain.Room, error)
	ListRooms(ctx context.Context, kind domain.ResourceKind) ([]*domain.Room, error)
}

type repairStore interface {
	Enqueue(ctx context.Context, task *domain.RepairTask) (*domain.RepairTask, error)
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*domain.RepairTask, error)
	MarkDone(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, lastError string, nextAttemptAt time.Time, giveUp bool) error
}

type txManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// storage репозитории выбранного драйвера
type storage struct {
	appointments appointmentStore
	roomBookings roomBookingStore
	resources    resourceStore
	repairs      repairStore
	txManager    txManager
	close        func() error
}

// openPostgres подключается к Postgres и оборачивает соединение метриками запросов
func openPostgres(cfg config.DatabaseConfig, m *metrics.Metrics, stopCh <-chan struct{}, log *logger.Logger) (*storage, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)", cfg.Host, cfg.Port, cfg.DBName)

	var wrappedDB *dbmetrics.DB
	if m != nil {
		wrappedDB = dbmetrics.WrapWithDefault(db, m, stopCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}

	return &storage{
		appointments: appointmentRepo.NewRepository(wrappedDB),
		roomBookings: roomBookingRepo.NewRepository(wrappedDB),
		resources:    resourceRepo.NewRepository(wrappedDB),
		repairs:      repairRepo.NewRepository(wrappedDB),
		txManager:    txmanager.NewTransactionManager(wrappedDB),
		close:        db.Close,
	}, nil
}

// openMemory поднимает хранилище в памяти с демонстрационными ресурсами
func openMemory(log *logger.Logger) *storage {
	store := memory.NewStore()
	seedDemo(store)
	log.Warn("Using in-memory storage, data is lost on restart")

	return &storage{
		appointments: store.Appointments(),
		roomBookings: store.RoomBookings(),
		resources:    store.Resources(),
		repairs:      store.Repairs(),
		txManager:    store.TxManager(),
		close:        func() error { return nil },
	}
}

func seedDemo(store *memory.Store) {
	weekday := domain.DaySchedule{
		IsOpen:    true,
		OpenTime:  types.MustTimeString("09:00"),
		CloseTime: types.MustTimeString("18:00"),
	}
	schedule := domain.WeeklySchedule{
		time.Monday:    weekday,
		time.Tuesday:   weekday,
		time.Wednesday: weekday,
		time.Thursday:  weekday,
		time.Friday:    weekday,
		time.Saturday:  {IsOpen: false},
		time.Sunday:    {IsOpen: false},
	}

	store.AddProfessional(domain.Professional{ID: 1, Name: "Dr. Ivanova", Active: true, Schedule: schedule})
	store.AddProfessional(domain.Professional{ID: 2, Name: "Dr. Petrov", Active: true, Schedule: schedule})

	store.AddRoom(domain.Room{ID: 1, Kind: domain.ResourceConsultationRoom, Name: "Consultation 1", Active: true, SortOrder: 1})
	store.AddRoom(domain.Room{ID: 2, Kind: domain.ResourceConsultationRoom, Name: "Consultation 2", Active: true, SortOrder: 2})
	store.AddRoom(domain.Room{ID: 3, Kind: domain.ResourceWellnessRoom, Name: "Sauna", Active: true, SortOrder: 1})
	store.AddRoom(domain.Room{ID: 4, Kind: domain.ResourceWellnessRoom, Name: "Massage", Active: true, SortOrder: 2})
	store.AddRoom(domain.Room{ID: 5, Kind: domain.ResourceTreatmentRoom, Name: "Treatment A", Active: true, SortOrder: 1})
}
