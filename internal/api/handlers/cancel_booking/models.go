package cancel_booking

import (
	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/bookings"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/bookings/models"
	cancelBooking "github.com/m04kA/SMC-ClinicBooking/internal/usecase/cancel_booking"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// PartialCancelResponse ответ 202: отмена выполнена частично, пара будет восстановлена фоново
type PartialCancelResponse struct {
	Consistent    bool   `json:"consistent"`
	Operation     string `json:"operation"`
	Completed     string `json:"completed"`
	Failed        string `json:"failed"`
	AppointmentID int64  `json:"appointmentId"`
	RoomBookingID int64  `json:"roomBookingId"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CancelBookingRequest) ToUseCaseRequest(source bookings.Source, id int64) *cancelBooking.Request {
	reason := ""
	if r.CancellationReason != nil {
		reason = *r.CancellationReason
	}

	return &cancelBooking.Request{
		Source: source,
		ID:     id,
		Reason: reason,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelBooking.Response) *models.BookingPairResponse {
	return models.FromDomainPair(&domain.BookingPair{Appointment: resp.Appointment, Room: resp.RoomBooking})
}

// FromPartialWrite описание частичной отмены
func FromPartialWrite(err *domain.PartialWriteError) *PartialCancelResponse {
	return &PartialCancelResponse{
		Consistent:    false,
		Operation:     err.Operation,
		Completed:     err.Completed,
		Failed:        err.Failed,
		AppointmentID: err.AppointmentID,
		RoomBookingID: err.RoomBookingID,
	}
}
