package models

import (
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
)

// AppointmentResponse запись журнала приемов
type AppointmentResponse struct {
	ID                 int64      `json:"id"`
	Kind               string     `json:"kind"`
	PatientID          int64      `json:"patientId"`
	ServiceID          int64      `json:"serviceId"`
	SubServiceID       *int64     `json:"subServiceId,omitempty"`
	ServiceType        string     `json:"serviceType"`
	ProfessionalID     *int64     `json:"professionalId,omitempty"`
	RoomID             *int64     `json:"roomId,omitempty"`
	Date               string     `json:"date"`      // "2026-03-02"
	StartTime          string     `json:"startTime"` // "10:00"
	EndTime            string     `json:"endTime"`
	DurationMinutes    int        `json:"durationMinutes"`
	Status             string     `json:"status"`
	Amount             float64    `json:"amount"`
	Notes              *string    `json:"notes,omitempty"`
	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// RoomBookingResponse бронирование кабинета
type RoomBookingResponse struct {
	ID                 int64      `json:"id"`
	Kind               string     `json:"kind"`
	RoomID             int64      `json:"roomId"`
	AppointmentID      *int64     `json:"appointmentId,omitempty"`
	ServiceType        string     `json:"serviceType"`
	ProfessionalID     *int64     `json:"professionalId,omitempty"`
	PatientID          int64      `json:"patientId"`
	Date               string     `json:"date"`
	StartTime          string     `json:"startTime"`
	EndTime            string     `json:"endTime"`
	DurationMinutes    int        `json:"durationMinutes"`
	BufferMinutes      int        `json:"bufferMinutes"`
	Status             string     `json:"status"`
	Amount             float64    `json:"amount"`
	Notes              *string    `json:"notes,omitempty"`
	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// BookingPairResponse пара записей одного бронирования
type BookingPairResponse struct {
	Consistent  bool                 `json:"consistent"`
	Appointment *AppointmentResponse `json:"appointment,omitempty"`
	RoomBooking *RoomBookingResponse `json:"roomBooking,omitempty"`
}

// FromDomainAppointment конвертирует domain.Appointment в ответ
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}
	return &AppointmentResponse{
		ID:                 a.ID,
		Kind:               string(a.Kind),
		PatientID:          a.PatientID,
		ServiceID:          a.ServiceID,
		SubServiceID:       a.SubServiceID,
		ServiceType:        string(a.ServiceType),
		ProfessionalID:     a.ProfessionalID,
		RoomID:             a.RoomID,
		Date:               a.Date.Format(domain.DateFormat),
		StartTime:          a.StartTime.String(),
		EndTime:            a.EndTime.String(),
		DurationMinutes:    a.DurationMinutes,
		Status:             string(a.Status),
		Amount:             a.Amount,
		Notes:              a.Notes,
		CancellationReason: a.CancellationReason,
		CancelledAt:        a.CancelledAt,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

// FromDomainRoomBooking конвертирует domain.RoomBooking в ответ
func FromDomainRoomBooking(b *domain.RoomBooking) *RoomBookingResponse {
	if b == nil {
		return nil
	}
	return &RoomBookingResponse{
		ID:                 b.ID,
		Kind:               string(b.Kind),
		RoomID:             b.RoomID,
		AppointmentID:      b.AppointmentID,
		ServiceType:        string(b.ServiceType),
		ProfessionalID:     b.ProfessionalID,
		PatientID:          b.PatientID,
		Date:               b.Date.Format(domain.DateFormat),
		StartTime:          b.StartTime.String(),
		EndTime:            b.EndTime.String(),
		DurationMinutes:    b.DurationMinutes,
		BufferMinutes:      b.BufferMinutes,
		Status:             string(b.Status),
		Amount:             b.Amount,
		Notes:              b.Notes,
		CancellationReason: b.CancellationReason,
		CancelledAt:        b.CancelledAt,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

// FromDomainPair конвертирует пару записей в ответ
func FromDomainPair(p *domain.BookingPair) *BookingPairResponse {
	return &BookingPairResponse{
		Consistent:  p.IsConsistent(),
		Appointment: FromDomainAppointment(p.Appointment),
		RoomBooking: FromDomainRoomBooking(p.Room),
	}
}
