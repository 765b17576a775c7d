package reschedule_booking

import (
	"github.com/m04kA/SMC-ClinicBooking/internal/api/handlers"
	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/bookings"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/bookings/models"
	rescheduleBooking "github.com/m04kA/SMC-ClinicBooking/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

// RescheduleBookingRequest HTTP request model, отсутствующие поля не меняются
type RescheduleBookingRequest struct {
	Date            *string `json:"date,omitempty"`      // "2026-03-02"
	StartTime       *string `json:"startTime,omitempty"` // "10:00"
	DurationMinutes *int    `json:"durationMinutes,omitempty"`
	ServiceType     *string `json:"serviceType,omitempty"`
	ProfessionalID  *int64  `json:"professionalId,omitempty"`
	RoomID          *int64  `json:"roomId,omitempty"`
	BufferMinutes   *int    `json:"bufferMinutes,omitempty"`
}

type parseError struct {
	message string
	err     error
}

func (e *parseError) Error() string { return e.err.Error() }

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleBookingRequest) ToUseCaseRequest(source bookings.Source, id int64) (*rescheduleBooking.Request, error) {
	req := &rescheduleBooking.Request{
		Source:          source,
		ID:              id,
		DurationMinutes: r.DurationMinutes,
		ProfessionalID:  r.ProfessionalID,
		RoomID:          r.RoomID,
		BufferMinutes:   r.BufferMinutes,
	}

	if r.Date != nil {
		date, err := handlers.ParseDate(*r.Date)
		if err != nil {
			return nil, &parseError{message: msgInvalidDate, err: err}
		}
		req.Date = &date
	}

	if r.StartTime != nil {
		start, err := types.NewTimeStringFromString(*r.StartTime)
		if err != nil {
			return nil, &parseError{message: msgInvalidTime, err: err}
		}
		req.StartTime = &start
	}

	if r.ServiceType != nil {
		serviceType, err := domain.ParseServiceType(*r.ServiceType)
		if err != nil {
			return nil, &parseError{message: msgInvalidServiceType, err: err}
		}
		req.ServiceType = &serviceType
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *rescheduleBooking.Response) *models.BookingPairResponse {
	return models.FromDomainPair(&domain.BookingPair{Appointment: resp.Appointment, Room: resp.RoomBooking})
}
