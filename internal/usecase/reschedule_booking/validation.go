package reschedule_booking

import (
	"fmt"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ID <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidInput)
	}

	if !req.HasChanges() {
		return fmt.Errorf("%w: nothing to change", ErrInvalidInput)
	}

	if req.Date != nil && req.Date.IsZero() {
		return fmt.Errorf("%w: date is empty", ErrInvalidInput)
	}

	if req.StartTime != nil {
		if err := req.StartTime.Validate(); err != nil {
			return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
		}
	}

	if req.DurationMinutes != nil &&
		(*req.DurationMinutes < domain.MinDurationMinutes || *req.DurationMinutes > domain.MaxDurationMinutes) {
		return fmt.Errorf("%w: durationMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinDurationMinutes, domain.MaxDurationMinutes)
	}

	if req.BufferMinutes != nil && (*req.BufferMinutes < 0 || *req.BufferMinutes > domain.MaxBufferMinutes) {
		return fmt.Errorf("%w: bufferMinutes must be between 0 and %d", ErrInvalidInput, domain.MaxBufferMinutes)
	}

	return nil
}

// validatePair проверяет, что пару можно переносить
func validatePair(pair *domain.BookingPair) error {
	appt := pair.Appointment
	if appt == nil {
		return fmt.Errorf("%w: appointment is missing", ErrInconsistentPair)
	}
	if appt.Kind.HasRoomBooking() && pair.Room == nil {
		return fmt.Errorf("%w: %s room booking is missing", ErrInconsistentPair, appt.Kind)
	}
	if !appt.CanBeUpdated() {
		return fmt.Errorf("%w: status %s", ErrCannotReschedule, appt.Status)
	}
	if pair.Room != nil && !pair.Room.CanBeUpdated() {
		return fmt.Errorf("%w: room booking status %s", ErrInconsistentPair, pair.Room.Status)
	}
	return nil
}

// buildTarget накладывает изменения запроса на текущую пару и пересчитывает окончание
func buildTarget(pair *domain.BookingPair, req *Request, preparationMinutes int) (*target, error) {
	appt := pair.Appointment

	t := &target{
		kind:           appt.Kind,
		serviceType:    appt.ServiceType,
		date:           appt.Date,
		start:          appt.StartTime,
		duration:       appt.DurationMinutes,
		professionalID: appt.ProfessionalID,
		roomID:         appt.RoomID,
	}
	if pair.Room != nil {
		roomID := pair.Room.RoomID
		t.roomID = &roomID
		t.buffer = pair.Room.BufferMinutes
	}

	serviceChanged := req.ServiceType != nil && *req.ServiceType != appt.ServiceType
	if req.ServiceType != nil {
		t.serviceType = *req.ServiceType
	}

	policy, err := t.serviceType.Policy()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if policy.Kind != appt.Kind {
		return nil, fmt.Errorf("%w: cannot change %s booking to %s service", ErrInvalidInput, appt.Kind, t.serviceType)
	}
	if preparationMinutes > 0 {
		policy = policy.WithPreparation(preparationMinutes)
	}
	t.policy = policy

	if serviceChanged {
		t.duration = policy.DefaultDurationMinutes
		t.buffer = policy.BufferAfterMinutes
	}

	if req.Date != nil {
		t.date = *req.Date
	}
	if req.StartTime != nil {
		t.start = *req.StartTime
	}
	if req.DurationMinutes != nil {
		t.duration = *req.DurationMinutes
	}
	if req.BufferMinutes != nil && t.kind == domain.KindWellness {
		t.buffer = *req.BufferMinutes
	}
	if req.ProfessionalID != nil {
		t.professionalID = req.ProfessionalID
	}
	if req.RoomID != nil {
		t.roomID = req.RoomID
	}

	if policy.RequiresProfessional && t.professionalID == nil {
		return nil, fmt.Errorf("%w: professionalId is required for %s", ErrInvalidInput, t.serviceType)
	}

	end, err := domain.EndTime(t.start, t.duration)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	t.end = end

	return t, nil
}
