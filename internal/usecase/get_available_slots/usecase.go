package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/availability"
	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

// UseCase use case для получения сетки слотов ресурса с доступностью
type UseCase struct {
	resolver     AvailabilityResolver
	opts         Options
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(resolver AvailabilityResolver, opts Options, logger Logger) *UseCase {
	return &UseCase{
		resolver:     resolver,
		opts:         opts,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute строит сетку слотов на день и проверяет каждый слот одним чтением бронирований
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: resource=%s, date=%s", req.Resource, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Сетка и кандидат
	grid := uc.gridFor(req.Resource.Kind)
	starts, err := grid.Slots()
	if err != nil {
		uc.logger.Error("GetAvailableSlots: invalid grid: %v", err)
		return nil, fmt.Errorf("%w: build grid: %v", ErrInternal, err)
	}

	duration, buffer, err := uc.sessionShape(req, grid.StepMinutes)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: %v", err)
		return nil, err
	}

	// Слоты, переходящие через полночь, в сетку не попадают
	candidates := make([]availability.Candidate, 0, len(starts))
	for _, start := range starts {
		if _, err := domain.EndTime(start, duration); err != nil {
			continue
		}
		candidates = append(candidates, availability.Candidate{
			Start:           start,
			DurationMinutes: duration,
			BufferAfter:     buffer,
		})
	}

	// 3. Проверка доступности
	results, err := uc.resolver.CheckMany(ctx, req.Resource, req.Date, candidates, req.ExcludeID)
	if err != nil {
		if errors.Is(err, availability.ErrResourceNotFound) {
			uc.logger.Warn("GetAvailableSlots: resource %s not found", req.Resource)
			return nil, ErrResourceNotFound
		}
		if errors.Is(err, domain.ErrLookupFailed) {
			return nil, err
		}
		uc.logger.Error("GetAvailableSlots: availability check failed: %v", err)
		return nil, fmt.Errorf("%w: check availability: %v", ErrInternal, err)
	}

	// 4. Прошедшие слоты
	now := uc.timeProvider.Now()
	past := isDateInPast(req.Date, now)
	today := isSameDay(req.Date, now)
	current := types.NewTimeString(now)

	slots := make([]Slot, 0, len(results))
	for _, res := range results {
		slot := Slot{
			StartTime:       res.Candidate.Start,
			EndTime:         res.End,
			DurationMinutes: res.Candidate.DurationMinutes,
			Available:       res.Available,
			Reason:          string(res.Reason),
		}
		if past || (today && res.Candidate.Start.IsBefore(current)) {
			slot.Available = false
			slot.Reason = ReasonPast
		}
		slots = append(slots, slot)
	}

	uc.logger.Info("GetAvailableSlots: %d slots for %s on %s", len(slots), req.Resource, req.Date.Format(domain.DateFormat))

	return &Response{Resource: req.Resource, Date: req.Date, Slots: slots}, nil
}

// gridFor wellness-кабинеты используют свою сетку, включающую время закрытия
func (uc *UseCase) gridFor(kind domain.ResourceKind) domain.TimeGrid {
	if kind == domain.ResourceWellnessRoom {
		return domain.WellnessGrid(uc.opts.OpenTime, uc.opts.CloseTime, uc.opts.WellnessStepMinutes)
	}
	return domain.ClinicalGrid(uc.opts.OpenTime, uc.opts.CloseTime, uc.opts.ClinicalStepMinutes)
}

// sessionShape длительность и подготовка кандидата
// Подготовка учитывается только для wellness-кабинетов
func (uc *UseCase) sessionShape(req *Request, step int) (int, int, error) {
	duration := step
	buffer := 0

	if req.ServiceType != nil {
		policy, err := req.ServiceType.Policy()
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		if uc.opts.PreparationMinutes > 0 {
			policy = policy.WithPreparation(uc.opts.PreparationMinutes)
		}
		duration = policy.DefaultDurationMinutes
		if req.Resource.Kind == policy.RoomKind {
			buffer = policy.BufferAfterMinutes
		}
	}

	if req.DurationMinutes > 0 {
		duration = req.DurationMinutes
	}

	return duration, buffer, nil
}
