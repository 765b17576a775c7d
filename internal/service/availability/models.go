package availability

import (
	"fmt"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

// Reason причина недоступности
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonResourceInactive    Reason = "resource_inactive"
	ReasonNotWorkingDay       Reason = "not_working_day"
	ReasonOutsideWorkingHours Reason = "outside_working_hours"
	ReasonClosingTimeExceeded Reason = "closing_time_exceeded"
	ReasonSessionConflict     Reason = "session_conflict"
	ReasonBufferConflict      Reason = "buffer_conflict"
)

// Candidate проверяемый интервал
// BufferAfter задается только для бронирований кабинетов с подготовкой
type Candidate struct {
	Start           types.TimeString
	DurationMinutes int
	BufferBefore    int
	BufferAfter     int
}

// Options параметры резолвера
type Options struct {
	CloseTime types.TimeString
	// AvailableWithoutSchedule: специалист без расписания на день считается свободным весь день
	AvailableWithoutSchedule bool
}

// Result ответ на запрос доступности
type Result struct {
	Resource  domain.ResourceRef
	Candidate Candidate
	End       types.TimeString
	Available bool
	Reason    Reason
	Conflicts []domain.Conflict
}

// Err переводит отрицательный результат в типизированную ошибку домена
func (r *Result) Err() error {
	if r.Available {
		return nil
	}
	switch r.Reason {
	case ReasonSessionConflict, ReasonBufferConflict:
		return &domain.ConflictError{Resource: r.Resource, Conflicts: r.Conflicts}
	case ReasonClosingTimeExceeded:
		return fmt.Errorf("%w: %s ends at %s", domain.ErrClosingTimeExceeded, r.Resource, r.End)
	case ReasonOutsideWorkingHours:
		return fmt.Errorf("%w: %s %s-%s", domain.ErrOutsideWorkingHours, r.Resource, r.Candidate.Start, r.End)
	case ReasonNotWorkingDay:
		return fmt.Errorf("%w: %s", domain.ErrNotWorkingDay, r.Resource)
	case ReasonResourceInactive:
		return fmt.Errorf("%w: %s", domain.ErrResourceInactive, r.Resource)
	default:
		return fmt.Errorf("%w: %s unavailable", domain.ErrConflict, r.Resource)
	}
}
