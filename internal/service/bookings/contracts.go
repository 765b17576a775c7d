package bookings

import (
	"context"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
)

// AppointmentRepository интерфейс репозитория приемов
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
}

// RoomBookingRepository интерфейс репозитория бронирований кабинетов
type RoomBookingRepository interface {
	GetByID(ctx context.Context, kind domain.BookingKind, id int64) (*domain.RoomBooking, error)
	GetByAppointmentID(ctx context.Context, kind domain.BookingKind, appointmentID int64) (*domain.RoomBooking, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
