package availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
)

// ResourceProvider источник ресурсов (специалисты и кабинеты)
type ResourceProvider interface {
	GetResource(ctx context.Context, ref domain.ResourceRef) (*domain.Resource, error)
}

// BookingLookup возвращает неотмененные интервалы ресурса на дату
type BookingLookup interface {
	ListIntervals(ctx context.Context, ref domain.ResourceRef, date time.Time) ([]domain.BookingInterval, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
