package create_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrProfessionalNotFound возвращается, когда специалист не найден
	ErrProfessionalNotFound = errors.New("create_booking: professional not found")

	// ErrRoomNotFound возвращается, когда кабинет не найден
	ErrRoomNotFound = errors.New("create_booking: room not found")

	// ErrNoRoomAvailable возвращается, когда при автоподборе не нашлось свободного кабинета
	ErrNoRoomAvailable = errors.New("create_booking: no room available for this slot")

	// ErrResourceBusy возвращается, когда ресурс заблокирован параллельной записью
	ErrResourceBusy = errors.New("create_booking: resource is being booked concurrently")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
