package reschedule_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/events"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/lock"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/availability"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/bookings"
)

// PairLoader загрузка пары записей по id любой из них
type PairLoader interface {
	GetPair(ctx context.Context, source bookings.Source, id int64) (*domain.BookingPair, error)
}

// AppointmentRepository интерфейс репозитория приемов
type AppointmentRepository interface {
	UpdateSchedule(ctx context.Context, a *domain.Appointment) error
}

// RoomBookingRepository интерфейс репозитория бронирований кабинетов
type RoomBookingRepository interface {
	UpdateSchedule(ctx context.Context, b *domain.RoomBooking) error
}

// ResourceRepository справочник специалистов и кабинетов
type ResourceRepository interface {
	GetProfessional(ctx context.Context, id int64) (*domain.Professional, error)
	GetRoom(ctx context.Context, kind domain.ResourceKind, id int64) (*domain.Room, error)
}

// AvailabilityResolver проверка доступности ресурса
type AvailabilityResolver interface {
	IsAvailable(ctx context.Context, ref domain.ResourceRef, date time.Time, candidate availability.Candidate, excludeBookingID int64) (*availability.Result, error)
}

// Locker блокировка записи по ресурсам
type Locker interface {
	Acquire(ctx context.Context, keys ...string) (lock.ReleaseFunc, error)
}

// EventPublisher публикация событий бронирования
type EventPublisher interface {
	Publish(ctx context.Context, ev events.Event) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчики операций
type Metrics interface {
	RecordBookingOperation(operation, result string)
	RecordConflict(resourceKind, conflictKind string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
