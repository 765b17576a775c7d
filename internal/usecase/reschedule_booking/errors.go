package reschedule_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_booking: invalid input data")

	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("reschedule_booking: booking not found")

	// ErrCannotReschedule возвращается для бронирований не в статусе pending или confirmed
	ErrCannotReschedule = errors.New("reschedule_booking: booking cannot be rescheduled")

	// ErrInconsistentPair возвращается, когда половина пары отсутствует или отменена
	ErrInconsistentPair = errors.New("reschedule_booking: booking pair is inconsistent")

	// ErrProfessionalNotFound возвращается, когда специалист не найден
	ErrProfessionalNotFound = errors.New("reschedule_booking: professional not found")

	// ErrRoomNotFound возвращается, когда кабинет не найден
	ErrRoomNotFound = errors.New("reschedule_booking: room not found")

	// ErrResourceBusy возвращается, когда ресурс заблокирован параллельной записью
	ErrResourceBusy = errors.New("reschedule_booking: resource is being booked concurrently")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_booking: internal error")
)
