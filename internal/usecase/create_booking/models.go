package create_booking

import (
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/availability"
	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	PatientID       int64
	ServiceType     domain.ServiceType
	ServiceID       int64
	SubServiceID    *int64
	ProfessionalID  *int64           // обязателен для консультаций и процедур
	RoomID          *int64           // nil включает автоподбор кабинета
	Date            time.Time        // дата без времени
	StartTime       types.TimeString // "10:00"
	DurationMinutes int              // 0 означает длительность услуги по умолчанию
	BufferMinutes   *int             // подготовка после сеанса, только wellness
	Amount          float64
	Notes           *string
}

// Response созданная пара записей
type Response struct {
	Appointment *domain.Appointment
	RoomBooking *domain.RoomBooking // nil для консультаций
}

// Options параметры координатора
type Options struct {
	PreparationMinutes int  // подготовка wellness-кабинета по умолчанию
	AutoAssignRooms    bool // разрешить автоподбор кабинета
}

// plan вычисленные параметры бронирования до записи
type plan struct {
	policy       domain.ServicePolicy
	end          types.TimeString
	duration     int
	buffer       int
	professional *domain.Professional
	room         *domain.Room
}

func (p *plan) roomRef() *domain.ResourceRef {
	if p.room == nil {
		return nil
	}
	ref := p.room.Ref()
	return &ref
}

func (p *plan) professionalRef() *domain.ResourceRef {
	if p.professional == nil {
		return nil
	}
	ref := p.professional.Ref()
	return &ref
}

// resourceCheck ресурс и кандидат для повторной проверки
type resourceCheck struct {
	ref       domain.ResourceRef
	candidate availability.Candidate
}
