package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	resourceRepo "github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/resource"
	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

// Resolver отвечает, свободен ли ресурс для кандидата
// Чистый запрос, побочных эффектов нет
type Resolver struct {
	resources ResourceProvider
	lookup    BookingLookup
	opts      Options
	logger    Logger
}

// NewResolver создает резолвер доступности
func NewResolver(resources ResourceProvider, lookup BookingLookup, opts Options, logger Logger) *Resolver {
	return &Resolver{
		resources: resources,
		lookup:    lookup,
		opts:      opts,
		logger:    logger,
	}
}

// CloseTime время закрытия, после которого не может заканчиваться сеанс в кабинете
func (r *Resolver) CloseTime() types.TimeString {
	return r.opts.CloseTime
}

// IsAvailable проверяет одного кандидата
// excludeBookingID исключает редактируемое бронирование (0 ничего не исключает)
func (r *Resolver) IsAvailable(
	ctx context.Context,
	ref domain.ResourceRef,
	date time.Time,
	candidate Candidate,
	excludeBookingID int64,
) (*Result, error) {
	results, err := r.CheckMany(ctx, ref, date, []Candidate{candidate}, excludeBookingID)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// CheckMany проверяет набор кандидатов с одним чтением бронирований
func (r *Resolver) CheckMany(
	ctx context.Context,
	ref domain.ResourceRef,
	date time.Time,
	candidates []Candidate,
	excludeBookingID int64,
) ([]*Result, error) {
	resource, err := r.resources.GetResource(ctx, ref)
	if err != nil {
		if errors.Is(err, resourceRepo.ErrResourceNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, ref)
		}
		r.logger.Error("Availability: failed to load resource %s: %v", ref, err)
		return nil, fmt.Errorf("%w: load resource %s: %v", domain.ErrLookupFailed, ref, err)
	}

	results := make([]*Result, len(candidates))
	pending := make([]int, 0, len(candidates))

	for i, c := range candidates {
		end, err := domain.EndTime(c.Start, c.DurationMinutes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCandidate, err)
		}
		res := &Result{Resource: ref, Candidate: c, End: end, Available: true}
		results[i] = res

		if reason := r.staticReason(resource, date, c, end); reason != ReasonNone {
			res.Available = false
			res.Reason = reason
			continue
		}
		pending = append(pending, i)
	}

	if len(pending) == 0 {
		return results, nil
	}

	existing, err := r.lookup.ListIntervals(ctx, ref, date)
	if err != nil {
		r.logger.Error("Availability: booking lookup failed for %s on %s: %v", ref, date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: %s on %s: %v", domain.ErrLookupFailed, ref, date.Format(domain.DateFormat), err)
	}

	for _, i := range pending {
		res := results[i]
		span, err := domain.IntervalBetween(res.Candidate.Start, res.End)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCandidate, err)
		}
		probe := domain.BookingInterval{
			Resource:     ref,
			Date:         date,
			Span:         span,
			BufferBefore: res.Candidate.BufferBefore,
			BufferAfter:  res.Candidate.BufferAfter,
			Status:       domain.StatusPending,
		}

		conflicts := domain.FindConflicts(probe, existing, excludeBookingID)
		if len(conflicts) == 0 {
			continue
		}

		res.Available = false
		res.Conflicts = conflicts
		res.Reason = ReasonBufferConflict
		for _, c := range conflicts {
			if c.Kind == domain.ConflictSession {
				res.Reason = ReasonSessionConflict
				break
			}
		}
	}

	return results, nil
}

// staticReason проверки, не требующие чтения бронирований
func (r *Resolver) staticReason(resource *domain.Resource, date time.Time, c Candidate, end types.TimeString) Reason {
	if !resource.Active {
		return ReasonResourceInactive
	}

	if resource.Ref.Kind == domain.ResourceProfessional {
		day, ok := resource.Schedule.ForDay(date)
		if !ok {
			if r.opts.AvailableWithoutSchedule {
				return ReasonNone
			}
			return ReasonNotWorkingDay
		}
		if !day.IsOpen {
			return ReasonNotWorkingDay
		}
		if c.Start.IsBefore(day.OpenTime) || end.IsAfter(day.CloseTime) {
			return ReasonOutsideWorkingHours
		}
		return ReasonNone
	}

	// Для кабинетов конец сеанса ровно во время закрытия допустим
	if !r.opts.CloseTime.IsZero() && end.IsAfter(r.opts.CloseTime) {
		return ReasonClosingTimeExceeded
	}
	return ReasonNone
}
