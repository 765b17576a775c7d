package create_booking

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/events"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/lock"
	appointmentRepo "github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/appointment"
	resourceRepo "github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/resource"
	roomBookingRepo "github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/roombooking"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/availability"
	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

const (
	operationName = "create"

	// firstFitConcurrency сколько кабинетов проверяется одновременно при автоподборе
	firstFitConcurrency = 4
)

// UseCase use case для создания бронирования
type UseCase struct {
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

// Execute создает бронирование: специализированную запись и зеркальный прием
// Доступность перепроверяется под блокировкой ресурсов в сериализуемой транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: patient=%d, service=%s, date=%s, time=%s",
		req.PatientID, req.ServiceType, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Политика услуги и пересчет окончания
	policy, duration, buffer, err := resolvePolicy(req, uc.opts.PreparationMinutes)
	if err != nil {
		uc.logger.Warn("CreateBooking: %v", err)
		return nil, err
	}

	end, err := domain.EndTime(req.StartTime, duration)
	if err != nil {
		uc.logger.Warn("CreateBooking: invalid interval %s+%d: %v", req.StartTime, duration, err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	p := &plan{policy: policy, end: end, duration: duration, buffer: buffer}

	// 3. Специалист и кабинет
	if req.ProfessionalID != nil {
		p.professional, err = uc.loadProfessional(ctx, *req.ProfessionalID)
		if err != nil {
			return nil, err
		}
	}

	p.room, err = uc.selectRoom(ctx, req, p)
	if err != nil {
		uc.metrics.RecordBookingOperation(operationName, outcomeOf(err))
		return nil, err
	}

	// 4. Блокировка ресурсов
	release, err := uc.locker.Acquire(ctx, lockKeys(p.roomRef(), p.professionalRef())...)
	if err != nil {
		if errors.Is(err, lock.ErrLockTimeout) {
			uc.logger.Warn("CreateBooking: resources are locked: %v", err)
			uc.metrics.RecordBookingOperation(operationName, "busy")
			return nil, fmt.Errorf("%w: %v", ErrResourceBusy, err)
		}
		uc.logger.Error("CreateBooking: failed to acquire lock: %v", err)
		return nil, fmt.Errorf("%w: acquire lock: %v", ErrInternal, err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			uc.logger.Warn("CreateBooking: failed to release lock: %v", err)
		}
	}()

	reservation := domain.NewReservation()
	if err := reservation.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	// 5. Повторная проверка и двойная запись в одной транзакции
	var result Response
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := uc.ensureAvailable(txCtx, req, p); err != nil {
			return err
		}
		return uc.write(txCtx, req, p, &result)
	})
	if err != nil {
		_ = reservation.Reject(err)
		uc.metrics.RecordBookingOperation(operationName, outcomeOf(err))
		uc.logger.Warn("CreateBooking: rejected: %v", err)
		return nil, err
	}

	if err := reservation.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	uc.metrics.RecordBookingOperation(operationName, "success")

	uc.logger.Info("CreateBooking: created appointment id=%d (%s, %s %s-%s)",
		result.Appointment.ID, policy.Kind, req.Date.Format(domain.DateFormat), req.StartTime, end)

	// 6. Событие. Ошибка публикации не отменяет бронирование
	ev := events.NewPairEvent(events.TypeBookingCreated, policy.Kind, result.Appointment, result.RoomBooking)
	if err := uc.publisher.Publish(ctx, ev); err != nil {
		uc.logger.Warn("CreateBooking: failed to publish event for appointment id=%d: %v", result.Appointment.ID, err)
	}

	return &result, nil
}

func (uc *UseCase) loadProfessional(ctx context.Context, id int64) (*domain.Professional, error) {
	pro, err := uc.resources.GetProfessional(ctx, id)
	if err != nil {
		if errors.Is(err, resourceRepo.ErrResourceNotFound) {
			uc.logger.Warn("CreateBooking: professional id=%d not found", id)
			return nil, ErrProfessionalNotFound
		}
		uc.logger.Error("CreateBooking: failed to get professional id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: failed to get professional: %v", ErrInternal, err)
	}
	return pro, nil
}

// selectRoom возвращает закрепленный кабинет или первый свободный по порядку сортировки
func (uc *UseCase) selectRoom(ctx context.Context, req *Request, p *plan) (*domain.Room, error) {
	kind := p.policy.RoomKind

	if req.RoomID != nil {
		room, err := uc.resources.GetRoom(ctx, kind, *req.RoomID)
		if err != nil {
			if errors.Is(err, resourceRepo.ErrResourceNotFound) {
				uc.logger.Warn("CreateBooking: %s id=%d not found", kind, *req.RoomID)
				return nil, ErrRoomNotFound
			}
			uc.logger.Error("CreateBooking: failed to get %s id=%d: %v", kind, *req.RoomID, err)
			return nil, fmt.Errorf("%w: failed to get room: %v", ErrInternal, err)
		}
		return room, nil
	}

	// Консультация может проходить без кабинета
	if !p.policy.Kind.HasRoomBooking() {
		return nil, nil
	}

	if !uc.opts.AutoAssignRooms {
		return nil, fmt.Errorf("%w: roomId is required", ErrInvalidInput)
	}

	return uc.firstFitRoom(ctx, req, p)
}

// firstFitRoom проверяет кабинеты параллельно и выбирает первый свободный в порядке сортировки
// Проверка вне транзакции, выбранный кабинет перепроверяется при записи
func (uc *UseCase) firstFitRoom(ctx context.Context, req *Request, p *plan) (*domain.Room, error) {
	rooms, err := uc.resources.ListRooms(ctx, p.policy.RoomKind)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to list %s: %v", p.policy.RoomKind, err)
		return nil, fmt.Errorf("%w: list rooms: %v", domain.ErrLookupFailed, err)
	}

	candidate := roomCandidate(req.StartTime, p)
	available := make([]bool, len(rooms))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(firstFitConcurrency)
	for i, room := range rooms {
		g.Go(func() error {
			res, err := uc.resolver.IsAvailable(gctx, room.Ref(), req.Date, candidate, 0)
			if err != nil {
				return err
			}
			available[i] = res.Available
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		uc.logger.Error("CreateBooking: first-fit lookup failed: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrLookupFailed, err)
	}

	for i, ok := range available {
		if ok {
			uc.logger.Info("CreateBooking: auto-assigned %s id=%d", p.policy.RoomKind, rooms[i].ID)
			return rooms[i], nil
		}
	}

	uc.logger.Warn("CreateBooking: no free %s for %s %s", p.policy.RoomKind, req.Date.Format(domain.DateFormat), req.StartTime)
	return nil, ErrNoRoomAvailable
}

// ensureAvailable перепроверяет кабинет и специалиста внутри транзакции
func (uc *UseCase) ensureAvailable(ctx context.Context, req *Request, p *plan) error {
	checks := make([]resourceCheck, 0, 2)
	if ref := p.roomRef(); ref != nil {
		checks = append(checks, resourceCheck{ref: *ref, candidate: roomCandidate(req.StartTime, p)})
	}
	if ref := p.professionalRef(); ref != nil {
		checks = append(checks, resourceCheck{
			ref:       *ref,
			candidate: availability.Candidate{Start: req.StartTime, DurationMinutes: p.duration},
		})
	}

	for _, c := range checks {
		res, err := uc.resolver.IsAvailable(ctx, c.ref, req.Date, c.candidate, 0)
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

// write создает специализированную запись, прием и обратную ссылку
func (uc *UseCase) write(ctx context.Context, req *Request, p *plan, result *Response) error {
	kind := p.policy.Kind

	var roomBooking *domain.RoomBooking
	if kind.HasRoomBooking() {
		created, err := uc.roomBookings.Create(ctx, &domain.RoomBooking{
			Kind:            kind,
			RoomID:          p.room.ID,
			ServiceType:     req.ServiceType,
			ServiceID:       req.ServiceID,
			SubServiceID:    req.SubServiceID,
			ProfessionalID:  req.ProfessionalID,
			PatientID:       req.PatientID,
			Date:            req.Date,
			StartTime:       req.StartTime,
			EndTime:         p.end,
			DurationMinutes: p.duration,
			BufferMinutes:   p.buffer,
			Status:          domain.StatusConfirmed,
			Amount:          req.Amount,
			Notes:           req.Notes,
		})
		if err != nil {
			if errors.Is(err, roomBookingRepo.ErrOverlap) {
				return &domain.ConflictError{Resource: *p.roomRef()}
			}
			uc.logger.Error("CreateBooking: failed to create %s room booking: %v", kind, err)
			return fmt.Errorf("%w: create room booking: %v", ErrInternal, err)
		}
		roomBooking = created
	}

	appt := &domain.Appointment{
		Kind:            kind,
		PatientID:       req.PatientID,
		ServiceID:       req.ServiceID,
		SubServiceID:    req.SubServiceID,
		ServiceType:     req.ServiceType,
		ProfessionalID:  req.ProfessionalID,
		Date:            req.Date,
		StartTime:       req.StartTime,
		EndTime:         p.end,
		DurationMinutes: p.duration,
		Status:          domain.StatusConfirmed,
		Amount:          req.Amount,
		Notes:           req.Notes,
	}
	if !kind.HasRoomBooking() && p.room != nil {
		appt.RoomID = &p.room.ID
	}

	createdAppt, err := uc.appointments.Create(ctx, appt)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrOverlap) {
			ref := p.professionalRef()
			if ref == nil {
				ref = p.roomRef()
			}
			return &domain.ConflictError{Resource: *ref}
		}
		uc.logger.Error("CreateBooking: failed to create appointment: %v", err)
		return fmt.Errorf("%w: create appointment: %v", ErrInternal, err)
	}

	if roomBooking != nil {
		if err := uc.roomBookings.SetAppointmentID(ctx, kind, roomBooking.ID, createdAppt.ID); err != nil {
			uc.logger.Error("CreateBooking: failed to link room booking id=%d to appointment id=%d: %v",
				roomBooking.ID, createdAppt.ID, err)
			return fmt.Errorf("%w: link appointment: %v", ErrInternal, err)
		}
		roomBooking.AppointmentID = &createdAppt.ID
	}

	result.Appointment = createdAppt
	result.RoomBooking = roomBooking
	return nil
}

// roomCandidate кандидат для кабинета: wellness-кабинет занят еще и на время подготовки
func roomCandidate(start types.TimeString, p *plan) availability.Candidate {
	return availability.Candidate{Start: start, DurationMinutes: p.duration, BufferAfter: p.buffer}
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
	case errors.Is(err, domain.ErrConflict), errors.Is(err, ErrNoRoomAvailable):
		return "conflict"
	case errors.Is(err, domain.ErrClosingTimeExceeded),
		errors.Is(err, domain.ErrOutsideWorkingHours),
		errors.Is(err, domain.ErrNotWorkingDay),
		errors.Is(err, domain.ErrResourceInactive):
		return "rejected"
	default:
		return "error"
	}
}
