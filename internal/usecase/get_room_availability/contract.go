package get_room_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/availability"
)

// RoomRepository список кабинетов вида
type RoomRepository interface {
	ListRooms(ctx context.Context, kind domain.ResourceKind) ([]*domain.Room, error)
}

// AvailabilityResolver проверка доступности кабинета
type AvailabilityResolver interface {
	IsAvailable(ctx context.Context, ref domain.ResourceRef, date time.Time, candidate availability.Candidate, excludeBookingID int64) (*availability.Result, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
