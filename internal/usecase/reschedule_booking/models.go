package reschedule_booking

import (
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/availability"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/bookings"
	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

// Request изменения бронирования; nil означает "оставить как есть"
type Request struct {
	Source          bookings.Source
	ID              int64
	Date            *time.Time
	StartTime       *types.TimeString
	DurationMinutes *int
	ServiceType     *domain.ServiceType
	ProfessionalID  *int64
	RoomID          *int64
	BufferMinutes   *int
}

// HasChanges true, если запрос что-то меняет
func (r *Request) HasChanges() bool {
	return r.Date != nil || r.StartTime != nil || r.DurationMinutes != nil || r.ServiceType != nil ||
		r.ProfessionalID != nil || r.RoomID != nil || r.BufferMinutes != nil
}

// Response обновленная пара записей
type Response struct {
	Appointment *domain.Appointment
	RoomBooking *domain.RoomBooking
}

// Options параметры переноса
type Options struct {
	PreparationMinutes int
}

// target итоговые параметры бронирования после переноса
type target struct {
	kind           domain.BookingKind
	serviceType    domain.ServiceType
	policy         domain.ServicePolicy
	date           time.Time
	start          types.TimeString
	end            types.TimeString
	duration       int
	buffer         int
	professionalID *int64
	roomID         *int64
}

func (t *target) roomRef() *domain.ResourceRef {
	if t.roomID == nil {
		return nil
	}
	return &domain.ResourceRef{Kind: t.policy.RoomKind, ID: *t.roomID}
}

func (t *target) professionalRef() *domain.ResourceRef {
	if t.professionalID == nil {
		return nil
	}
	return &domain.ResourceRef{Kind: domain.ResourceProfessional, ID: *t.professionalID}
}

// resourceCheck ресурс, кандидат и собственная запись, исключаемая из проверки
type resourceCheck struct {
	ref       domain.ResourceRef
	candidate availability.Candidate
	excludeID int64
}
