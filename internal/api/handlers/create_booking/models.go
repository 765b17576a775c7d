package create_booking

import (
	"github.com/m04kA/SMC-ClinicBooking/internal/api/handlers"
	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/bookings/models"
	createBooking "github.com/m04kA/SMC-ClinicBooking/internal/usecase/create_booking"
	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	PatientID       int64   `json:"patientId"`
	ServiceType     string  `json:"serviceType"` // "infrared_sauna"
	ServiceID       int64   `json:"serviceId"`
	SubServiceID    *int64  `json:"subServiceId,omitempty"`
	ProfessionalID  *int64  `json:"professionalId,omitempty"`
	RoomID          *int64  `json:"roomId,omitempty"`
	Date            string  `json:"date"`      // "2026-03-02"
	StartTime       string  `json:"startTime"` // "10:00"
	DurationMinutes int     `json:"durationMinutes,omitempty"`
	BufferMinutes   *int    `json:"bufferMinutes,omitempty"`
	Amount          float64 `json:"amount"`
	Notes           *string `json:"notes,omitempty"`
}

// parseError ошибка разбора поля запроса с сообщением для клиента
type parseError struct {
	message string
	err     error
}

func (e *parseError) Error() string { return e.err.Error() }

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest() (*createBooking.Request, error) {
	serviceType, err := domain.ParseServiceType(r.ServiceType)
	if err != nil {
		return nil, &parseError{message: msgInvalidServiceType, err: err}
	}

	date, err := handlers.ParseDate(r.Date)
	if err != nil {
		return nil, &parseError{message: msgInvalidDate, err: err}
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, &parseError{message: msgInvalidTime, err: err}
	}

	return &createBooking.Request{
		PatientID:       r.PatientID,
		ServiceType:     serviceType,
		ServiceID:       r.ServiceID,
		SubServiceID:    r.SubServiceID,
		ProfessionalID:  r.ProfessionalID,
		RoomID:          r.RoomID,
		Date:            date,
		StartTime:       startTime,
		DurationMinutes: r.DurationMinutes,
		BufferMinutes:   r.BufferMinutes,
		Amount:          r.Amount,
		Notes:           r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *models.BookingPairResponse {
	return models.FromDomainPair(&domain.BookingPair{Appointment: resp.Appointment, Room: resp.RoomBooking})
}
