package reconciler

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/events"
)

// RepairQueue очередь задач восстановления
type RepairQueue interface {
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*domain.RepairTask, error)
	MarkDone(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, lastError string, nextAttemptAt time.Time, giveUp bool) error
}

// AppointmentRepository интерфейс репозитория приемов
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	Cancel(ctx context.Context, id int64, reason string) error
}

// RoomBookingRepository интерфейс репозитория бронирований кабинетов
type RoomBookingRepository interface {
	GetByID(ctx context.Context, kind domain.BookingKind, id int64) (*domain.RoomBooking, error)
	Cancel(ctx context.Context, kind domain.BookingKind, id int64, reason string) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher публикация событий бронирования
type EventPublisher interface {
	Publish(ctx context.Context, ev events.Event) error
}

// Metrics счетчики восстановления
type Metrics interface {
	RecordRepair(result string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
