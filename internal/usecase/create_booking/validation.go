package create_booking

import (
	"fmt"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.PatientID <= 0 {
		return fmt.Errorf("%w: patientId must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceId must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	if req.DurationMinutes != 0 &&
		(req.DurationMinutes < domain.MinDurationMinutes || req.DurationMinutes > domain.MaxDurationMinutes) {
		return fmt.Errorf("%w: durationMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinDurationMinutes, domain.MaxDurationMinutes)
	}

	if req.BufferMinutes != nil && (*req.BufferMinutes < 0 || *req.BufferMinutes > domain.MaxBufferMinutes) {
		return fmt.Errorf("%w: bufferMinutes must be between 0 and %d", ErrInvalidInput, domain.MaxBufferMinutes)
	}

	if req.Amount < 0 {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes too long (max %d characters)", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// resolvePolicy выбирает политику услуги с учетом подготовки и переопределений запроса
func resolvePolicy(req *Request, preparationMinutes int) (domain.ServicePolicy, int, int, error) {
	policy, err := req.ServiceType.Policy()
	if err != nil {
		return domain.ServicePolicy{}, 0, 0, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if preparationMinutes > 0 {
		policy = policy.WithPreparation(preparationMinutes)
	}

	duration := policy.DefaultDurationMinutes
	if req.DurationMinutes > 0 {
		duration = req.DurationMinutes
	}

	buffer := policy.BufferAfterMinutes
	if req.BufferMinutes != nil && policy.Kind == domain.KindWellness {
		buffer = *req.BufferMinutes
	}

	if policy.RequiresProfessional && req.ProfessionalID == nil {
		return domain.ServicePolicy{}, 0, 0, fmt.Errorf("%w: professionalId is required for %s", ErrInvalidInput, req.ServiceType)
	}

	return policy, duration, buffer, nil
}
