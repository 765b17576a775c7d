package reschedule_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/events"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/lock"
	appointmentRepo "github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/appointment"
	resourceRepo "github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/resource"
	roomBookingRepo "github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/roombooking"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/availability"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/bookings"
)

const operationName = "reschedule"

// UseCase use case для переноса бронирования
type UseCase struct {
	pairs        PairLoader
	appointments AppointmentRepository
	roomBookings RoomBookingRepository
	resources    ResourceRepository
	resolver     AvailabilityResolver
	locker       Locker
	publisher    EventPublisher
	txManager    TransactionManager
	metrics      Metrics
	opts         Options
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	pairs PairLoader,
	appointments AppointmentRepository,
	roomBookings RoomBookingRepository,
	resources ResourceRepository,
	resolver AvailabilityResolver,
	locker Locker,
	publisher EventPublisher,
	txManager TransactionManager,
	metrics Metrics,
	opts Options,
	logger Logger,
) *UseCase {
	return &UseCase{
		pairs:        pairs,
		appointments: appointments,
		roomBookings: roomBookings,
		resources:    resources,
		resolver:     resolver,
		locker:       locker,
		publisher:    publisher,
		txManager:    txManager,
		metrics:      metrics,
		opts:         opts,
		logger:       logger,
	}
}

// Execute переносит бронирование; собственные записи исключаются из проверки конфликтов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleBooking: source=%s id=%d", req.Source, req.ID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Текущая пара и итоговые параметры
	pair, err := uc.loadPair(ctx, req)
	if err != nil {
		return nil, err
	}

	t, err := buildTarget(pair, req, uc.opts.PreparationMinutes)
	if err != nil {
		uc.logger.Warn("RescheduleBooking: %v", err)
		return nil, err
	}

	if err := uc.checkResourcesExist(ctx, t); err != nil {
		return nil, err
	}

	// 3. Блокировка новых ресурсов
	release, err := uc.locker.Acquire(ctx, lockKeys(t.roomRef(), t.professionalRef())...)
	if err != nil {
		if errors.Is(err, lock.ErrLockTimeout) {
			uc.logger.Warn("RescheduleBooking: resources are locked: %v", err)
			uc.metrics.RecordBookingOperation(operationName, "busy")
			return nil, fmt.Errorf("%w: %v", ErrResourceBusy, err)
		}
		uc.logger.Error("RescheduleBooking: failed to acquire lock: %v", err)
		return nil, fmt.Errorf("%w: acquire lock: %v", ErrInternal, err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			uc.logger.Warn("RescheduleBooking: failed to release lock: %v", err)
		}
	}()

	reservation := domain.NewReservation()
	if err := reservation.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	// 4. Перечитываем пару под блокировкой строк, проверяем и обновляем обе записи
	var result Response
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		current, err := uc.loadPair(txCtx, req)
		if err != nil {
			return err
		}

		if err := uc.ensureAvailable(txCtx, current, t); err != nil {
			return err
		}

		return uc.write(txCtx, current, t, &result)
	})
	if err != nil {
		_ = reservation.Reject(err)
		uc.metrics.RecordBookingOperation(operationName, outcomeOf(err))
		uc.logger.Warn("RescheduleBooking: rejected: %v", err)
		return nil, err
	}

	if err := reservation.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	uc.metrics.RecordBookingOperation(operationName, "success")

	uc.logger.Info("RescheduleBooking: appointment id=%d moved to %s %s-%s",
		result.Appointment.ID, t.date.Format(domain.DateFormat), t.start, t.end)

	ev := events.NewPairEvent(events.TypeBookingRescheduled, t.kind, result.Appointment, result.RoomBooking)
	if err := uc.publisher.Publish(ctx, ev); err != nil {
		uc.logger.Warn("RescheduleBooking: failed to publish event for appointment id=%d: %v", result.Appointment.ID, err)
	}

	return &result, nil
}

func (uc *UseCase) loadPair(ctx context.Context, req *Request) (*domain.BookingPair, error) {
	pair, err := uc.pairs.GetPair(ctx, req.Source, req.ID)
	if err != nil {
		if errors.Is(err, bookings.ErrBookingNotFound) {
			uc.logger.Warn("RescheduleBooking: %s id=%d not found", req.Source, req.ID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("RescheduleBooking: failed to load %s id=%d: %v", req.Source, req.ID, err)
		return nil, fmt.Errorf("%w: load pair: %v", ErrInternal, err)
	}

	if err := validatePair(pair); err != nil {
		uc.logger.Warn("RescheduleBooking: %s id=%d: %v", req.Source, req.ID, err)
		return nil, err
	}
	return pair, nil
}

// checkResourcesExist проверяет, что новые специалист и кабинет существуют
func (uc *UseCase) checkResourcesExist(ctx context.Context, t *target) error {
	if t.professionalID != nil {
		if _, err := uc.resources.GetProfessional(ctx, *t.professionalID); err != nil {
			if errors.Is(err, resourceRepo.ErrResourceNotFound) {
				return ErrProfessionalNotFound
			}
			return fmt.Errorf("%w: get professional: %v", ErrInternal, err)
		}
	}

	if t.roomID != nil {
		if _, err := uc.resources.GetRoom(ctx, t.policy.RoomKind, *t.roomID); err != nil {
			if errors.Is(err, resourceRepo.ErrResourceNotFound) {
				return ErrRoomNotFound
			}
			return fmt.Errorf("%w: get room: %v", ErrInternal, err)
		}
	}

	return nil
}

// ensureAvailable проверяет новые интервалы, исключая собственные записи пары
func (uc *UseCase) ensureAvailable(ctx context.Context, pair *domain.BookingPair, t *target) error {
	checks := make([]resourceCheck, 0, 2)

	if ref := t.roomRef(); ref != nil {
		// кабинет консультации учитывается по приемам, остальные по специализированным записям
		exclude := pair.Appointment.ID
		if pair.Room != nil {
			exclude = pair.Room.ID
		}
		checks = append(checks, resourceCheck{
			ref:       *ref,
			candidate: availability.Candidate{Start: t.start, DurationMinutes: t.duration, BufferAfter: t.buffer},
			excludeID: exclude,
		})
	}
	if ref := t.professionalRef(); ref != nil {
		checks = append(checks, resourceCheck{
			ref:       *ref,
			candidate: availability.Candidate{Start: t.start, DurationMinutes: t.duration},
			excludeID: pair.Appointment.ID,
		})
	}

	for _, c := range checks {
		res, err := uc.resolver.IsAvailable(ctx, c.ref, t.date, c.candidate, c.excludeID)
		if err != nil {
			if errors.Is(err, domain.ErrLookupFailed) {
				return err
			}
			return fmt.Errorf("%w: availability of %s: %v", ErrInternal, c.ref, err)
		}
		if !res.Available {
			uc.metrics.RecordConflict(string(c.ref.Kind), string(res.Reason))
			return res.Err()
		}
	}

	return nil
}

// write обновляет специализированную запись, затем прием
func (uc *UseCase) write(ctx context.Context, pair *domain.BookingPair, t *target, result *Response) error {
	if pair.Room != nil {
		room := *pair.Room
		room.RoomID = *t.roomID
		room.ServiceType = t.serviceType
		room.ProfessionalID = t.professionalID
		room.Date = t.date
		room.StartTime = t.start
		room.EndTime = t.end
		room.DurationMinutes = t.duration
		room.BufferMinutes = t.buffer

		if err := uc.roomBookings.UpdateSchedule(ctx, &room); err != nil {
			if errors.Is(err, roomBookingRepo.ErrOverlap) {
				return &domain.ConflictError{Resource: *t.roomRef()}
			}
			uc.logger.Error("RescheduleBooking: failed to update %s room booking id=%d: %v", room.Kind, room.ID, err)
			return fmt.Errorf("%w: update room booking: %v", ErrInternal, err)
		}
		result.RoomBooking = &room
	}

	appt := *pair.Appointment
	appt.ServiceType = t.serviceType
	appt.ProfessionalID = t.professionalID
	appt.Date = t.date
	appt.StartTime = t.start
	appt.EndTime = t.end
	appt.DurationMinutes = t.duration
	if !appt.Kind.HasRoomBooking() {
		appt.RoomID = t.roomID
	}

	if err := uc.appointments.UpdateSchedule(ctx, &appt); err != nil {
		if errors.Is(err, appointmentRepo.ErrOverlap) {
			ref := t.professionalRef()
			if ref == nil {
				ref = t.roomRef()
			}
			return &domain.ConflictError{Resource: *ref}
		}
		uc.logger.Error("RescheduleBooking: failed to update appointment id=%d: %v", appt.ID, err)
		return fmt.Errorf("%w: update appointment: %v", ErrInternal, err)
	}
	result.Appointment = &appt

	return nil
}

func lockKeys(refs ...*domain.ResourceRef) []string {
	keys := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref != nil {
			keys = append(keys, ref.String())
		}
	}
	return keys
}

// outcomeOf метка результата для метрик
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrClosingTimeExceeded),
		errors.Is(err, domain.ErrOutsideWorkingHours),
		errors.Is(err, domain.ErrNotWorkingDay),
		errors.Is(err, domain.ErrResourceInactive),
		errors.Is(err, ErrCannotReschedule),
		errors.Is(err, ErrInconsistentPair):
		return "rejected"
	default:
		return "error"
	}
}
