package get_room_availability

import (
	"fmt"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса и возвращает длительность интервала
func validateRequest(req *Request) (int, error) {
	if !req.RoomKind.IsRoom() {
		return 0, fmt.Errorf("%w: unknown room kind %q", ErrInvalidInput, req.RoomKind)
	}

	if req.Date.IsZero() {
		return 0, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return 0, fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
	}

	if err := req.EndTime.Validate(); err != nil {
		return 0, fmt.Errorf("%w: invalid endTime: %v", ErrInvalidInput, err)
	}

	span, err := domain.IntervalBetween(req.StartTime, req.EndTime)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if req.BufferMinutes < 0 || req.BufferMinutes > domain.MaxBufferMinutes {
		return 0, fmt.Errorf("%w: bufferMinutes must be between 0 and %d", ErrInvalidInput, domain.MaxBufferMinutes)
	}

	if req.ExcludeBookingID < 0 {
		return 0, fmt.Errorf("%w: excludeBookingId must not be negative", ErrInvalidInput)
	}

	return span.Duration(), nil
}
