package domain

import (
	"time"

	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
)

// Valid returns true for a known status
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsActive returns true if the booking participates in conflict checks
func (s BookingStatus) IsActive() bool {
	return s != StatusCancelled
}

// BookingKind вид бронирования
// consultation хранится только в appointments, wellness и treatment дополнительно
// имеют специализированную запись о бронировании кабинета
type BookingKind string

const (
	KindConsultation BookingKind = "consultation"
	KindWellness     BookingKind = "wellness"
	KindTreatment    BookingKind = "treatment"
)

// Valid returns true for a known kind
func (k BookingKind) Valid() bool {
	return k == KindConsultation || k == KindWellness || k == KindTreatment
}

// HasRoomBooking true, если у вида есть специализированная запись
func (k BookingKind) HasRoomBooking() bool {
	return k == KindWellness || k == KindTreatment
}

// Appointment каноническая запись журнала приемов (биллинг и история пациента)
type Appointment struct {
	ID              int64
	Kind            BookingKind
	PatientID       int64
	ServiceID       int64
	SubServiceID    *int64
	ServiceType     ServiceType
	ProfessionalID  *int64
	RoomID          *int64 // кабинет консультации, только для KindConsultation
	Date            time.Time
	StartTime       types.TimeString
	EndTime         types.TimeString
	DurationMinutes int
	Status          BookingStatus
	Amount          float64
	Notes           *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the appointment is not cancelled
func (a *Appointment) IsActive() bool {
	return a.Status.IsActive()
}

// CanBeCancelled returns true if the appointment can be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.Status != StatusCompleted
}

// CanBeUpdated returns true if the appointment can be rescheduled
func (a *Appointment) CanBeUpdated() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// RoomBooking специализированное бронирование кабинета (wellness или treatment)
type RoomBooking struct {
	ID              int64
	Kind            BookingKind
	RoomID          int64
	AppointmentID   *int64 // обратная ссылка на зеркальный Appointment
	ServiceType     ServiceType
	ServiceID       int64
	SubServiceID    *int64
	ProfessionalID  *int64
	PatientID       int64
	Date            time.Time
	StartTime       types.TimeString
	EndTime         types.TimeString
	DurationMinutes int
	BufferMinutes   int // время подготовки после сеанса, только для wellness
	Status          BookingStatus
	Amount          float64
	Notes           *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the room booking is not cancelled
func (b *RoomBooking) IsActive() bool {
	return b.Status.IsActive()
}

// CanBeCancelled returns true if the room booking can be cancelled
func (b *RoomBooking) CanBeCancelled() bool {
	return b.Status != StatusCompleted
}

// CanBeUpdated returns true if the room booking can be rescheduled
func (b *RoomBooking) CanBeUpdated() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// RoomResourceKind тип кабинета, который занимает бронирование
func (b *RoomBooking) RoomResourceKind() ResourceKind {
	if b.Kind == KindTreatment {
		return ResourceTreatmentRoom
	}
	return ResourceWellnessRoom
}

// BookingPair зеркальная пара записей одного бронирования
// Room равен nil для консультаций
type BookingPair struct {
	Appointment *Appointment
	Room        *RoomBooking
}

// IsConsistent true, если статусы и временные поля пары совпадают
func (p *BookingPair) IsConsistent() bool {
	if p.Appointment == nil {
		return p.Room == nil
	}
	if p.Room == nil {
		return !p.Appointment.Kind.HasRoomBooking()
	}
	a, r := p.Appointment, p.Room
	return a.Status == r.Status &&
		a.Date.Equal(r.Date) &&
		a.StartTime.Equal(r.StartTime) &&
		a.EndTime.Equal(r.EndTime) &&
		a.Amount == r.Amount &&
		equalIDs(a.ProfessionalID, r.ProfessionalID)
}

func equalIDs(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
