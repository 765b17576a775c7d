package events

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
)

// Type тип события бронирования
type Type string

const (
	TypeBookingCreated     Type = "booking.created"
	TypeBookingRescheduled Type = "booking.rescheduled"
	TypeBookingCancelled   Type = "booking.cancelled"
	TypePartialWrite       Type = "booking.partial_write"
	TypeRepairCompleted    Type = "booking.repair_completed"
)

// Event событие, публикуемое после изменения пары записей
type Event struct {
	ID            string             `json:"id"`
	Type          Type               `json:"type"`
	OccurredAt    time.Time          `json:"occurredAt"`
	Kind          domain.BookingKind `json:"kind"`
	AppointmentID *int64             `json:"appointmentId,omitempty"`
	RoomBookingID *int64             `json:"roomBookingId,omitempty"`
	RoomID        *int64             `json:"roomId,omitempty"`
	PatientID     int64              `json:"patientId,omitempty"`
	Date          string             `json:"date,omitempty"`
	StartTime     string             `json:"startTime,omitempty"`
	EndTime       string             `json:"endTime,omitempty"`
	Status        string             `json:"status,omitempty"`
	Reason        string             `json:"reason,omitempty"`
}

// NewPairEvent собирает событие по паре записей. Любая из половин может отсутствовать
func NewPairEvent(t Type, kind domain.BookingKind, appt *domain.Appointment, room *domain.RoomBooking) Event {
	ev := Event{
		ID:         uuid.NewString(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
		Kind:       kind,
	}

	if room != nil {
		id := room.ID
		roomID := room.RoomID
		ev.RoomBookingID = &id
		ev.RoomID = &roomID
		ev.PatientID = room.PatientID
		ev.Date = room.Date.Format(domain.DateFormat)
		ev.StartTime = room.StartTime.String()
		ev.EndTime = room.EndTime.String()
		ev.Status = string(room.Status)
		if room.CancellationReason != nil {
			ev.Reason = *room.CancellationReason
		}
	}

	if appt != nil {
		id := appt.ID
		ev.AppointmentID = &id
		ev.PatientID = appt.PatientID
		ev.Date = appt.Date.Format(domain.DateFormat)
		ev.StartTime = appt.StartTime.String()
		ev.EndTime = appt.EndTime.String()
		ev.Status = string(appt.Status)
		if appt.RoomID != nil && ev.RoomID == nil {
			roomID := *appt.RoomID
			ev.RoomID = &roomID
		}
		if appt.CancellationReason != nil {
			ev.Reason = *appt.CancellationReason
		}
	}

	return ev
}

// Key ключ партиционирования: все события одной пары попадают в одну партицию
func (e Event) Key() string {
	switch {
	case e.RoomBookingID != nil:
		return string(e.Kind) + ":" + formatID(*e.RoomBookingID)
	case e.AppointmentID != nil:
		return "appointment:" + formatID(*e.AppointmentID)
	default:
		return e.ID
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
