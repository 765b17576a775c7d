package cancel_booking

import (
	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/bookings"
)

// Request запрос на отмену бронирования
type Request struct {
	Source bookings.Source
	ID     int64
	Reason string
}

// Response пара записей после отмены
type Response struct {
	Appointment *domain.Appointment
	RoomBooking *domain.RoomBooking
}
