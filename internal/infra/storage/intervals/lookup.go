package intervals

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
)

// AppointmentSource неотмененные приемы специалиста или кабинета консультаций
type AppointmentSource interface {
	ListActiveForResource(ctx context.Context, ref domain.ResourceRef, date time.Time) ([]*domain.Appointment, error)
}

// RoomBookingSource неотмененные бронирования wellness и treatment кабинетов
type RoomBookingSource interface {
	ListActiveByRoom(ctx context.Context, kind domain.BookingKind, roomID int64, date time.Time) ([]*domain.RoomBooking, error)
}

// Lookup собирает BookingInterval для ресурса из записей обоих видов
// Приемы не несут буфера, бронирования кабинетов несут буфер после сеанса
type Lookup struct {
	appointments AppointmentSource
	roomBookings RoomBookingSource
}

// NewLookup создает адаптер чтения интервалов
func NewLookup(appointments AppointmentSource, roomBookings RoomBookingSource) *Lookup {
	return &Lookup{appointments: appointments, roomBookings: roomBookings}
}

// ListIntervals возвращает неотмененные интервалы ресурса на дату
func (l *Lookup) ListIntervals(ctx context.Context, ref domain.ResourceRef, date time.Time) ([]domain.BookingInterval, error) {
	switch ref.Kind {
	case domain.ResourceProfessional, domain.ResourceConsultationRoom:
		appointments, err := l.appointments.ListActiveForResource(ctx, ref, date)
		if err != nil {
			return nil, err
		}
		return FromAppointments(ref, appointments)

	case domain.ResourceWellnessRoom, domain.ResourceTreatmentRoom:
		kind := domain.KindWellness
		if ref.Kind == domain.ResourceTreatmentRoom {
			kind = domain.KindTreatment
		}
		bookings, err := l.roomBookings.ListActiveByRoom(ctx, kind, ref.ID, date)
		if err != nil {
			return nil, err
		}
		return FromRoomBookings(ref, bookings)

	default:
		return nil, fmt.Errorf("intervals: unsupported resource kind %q", ref.Kind)
	}
}

// FromAppointments переводит приемы в интервалы без буфера
func FromAppointments(ref domain.ResourceRef, appointments []*domain.Appointment) ([]domain.BookingInterval, error) {
	result := make([]domain.BookingInterval, 0, len(appointments))
	for _, a := range appointments {
		iv, err := domain.NewBookingInterval(a.ID, ref, a.Date, a.StartTime, a.EndTime, 0, a.Status)
		if err != nil {
			return nil, fmt.Errorf("intervals: appointment id=%d: %w", a.ID, err)
		}
		iv.Kind = a.Kind
		result = append(result, iv)
	}
	return result, nil
}

// FromRoomBookings переводит бронирования кабинета в интервалы с буфером подготовки
func FromRoomBookings(ref domain.ResourceRef, bookings []*domain.RoomBooking) ([]domain.BookingInterval, error) {
	result := make([]domain.BookingInterval, 0, len(bookings))
	for _, b := range bookings {
		iv, err := domain.NewBookingInterval(b.ID, ref, b.Date, b.StartTime, b.EndTime, b.BufferMinutes, b.Status)
		if err != nil {
			return nil, fmt.Errorf("intervals: room booking id=%d: %w", b.ID, err)
		}
		iv.Kind = b.Kind
		result = append(result, iv)
	}
	return result, nil
}
