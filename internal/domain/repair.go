package domain

import "time"

// RepairAction недостающая операция над зеркальной записью
type RepairAction string

const (
	RepairCancelAppointment RepairAction = "cancel_appointment"
	RepairCancelRoomBooking RepairAction = "cancel_room_booking"
)

// RepairTask задача восстановления пары после PartialWriteError
type RepairTask struct {
	ID            int64
	Action        RepairAction
	Kind          BookingKind
	AppointmentID int64
	RoomBookingID int64
	Reason        string
	Attempts      int
	NextAttemptAt time.Time
	LastError     *string
	Done          bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
