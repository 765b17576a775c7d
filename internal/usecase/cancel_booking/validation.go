package cancel_booking

import (
	"fmt"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ID <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidInput)
	}

	if len(req.Reason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: cancellation reason too long (max %d characters)",
			ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	return nil
}

// validatePair запрещает отмену завершенных бронирований
func validatePair(pair *domain.BookingPair) error {
	if pair.Appointment != nil && !pair.Appointment.CanBeCancelled() {
		return fmt.Errorf("%w: appointment id=%d", ErrCannotCancel, pair.Appointment.ID)
	}
	if pair.Room != nil && !pair.Room.CanBeCancelled() {
		return fmt.Errorf("%w: room booking id=%d", ErrCannotCancel, pair.Room.ID)
	}
	return nil
}
