package cancel_booking

import (
	"context"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/events"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/bookings"
)

// PairLoader загрузка пары записей по id любой из них
type PairLoader interface {
	GetPair(ctx context.Context, source bookings.Source, id int64) (*domain.BookingPair, error)
}

// AppointmentRepository интерфейс репозитория приемов
type AppointmentRepository interface {
	Cancel(ctx context.Context, id int64, reason string) error
}

// RoomBookingRepository интерфейс репозитория бронирований кабинетов
type RoomBookingRepository interface {
	Cancel(ctx context.Context, kind domain.BookingKind, id int64, reason string) error
}

// RepairQueue очередь задач восстановления
type RepairQueue interface {
	Enqueue(ctx context.Context, task *domain.RepairTask) (*domain.RepairTask, error)
}

// EventPublisher публикация событий бронирования
type EventPublisher interface {
	Publish(ctx context.Context, ev events.Event) error
}

// Metrics счетчики операций
type Metrics interface {
	RecordBookingOperation(operation, result string)
	RecordPartialWrite(operation string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
