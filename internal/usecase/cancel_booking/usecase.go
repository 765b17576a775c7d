package cancel_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/events"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/bookings"
)

const (
	operationName = "cancel"

	recordAppointment = "appointment"
	recordRoomBooking = "room_booking"
)

// UseCase use case для отмены бронирования
type UseCase struct {
	pairs        PairLoader
	appointments AppointmentRepository
	roomBookings RoomBookingRepository
	repairs      RepairQueue
	publisher    EventPublisher
	metrics      Metrics
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	pairs PairLoader,
	appointments AppointmentRepository,
	roomBookings RoomBookingRepository,
	repairs RepairQueue,
	publisher EventPublisher,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		pairs:        pairs,
		appointments: appointments,
		roomBookings: roomBookings,
		repairs:      repairs,
		publisher:    publisher,
		metrics:      metrics,
		logger:       logger,
	}
}

// Execute отменяет специализированную запись, затем зеркальный прием (две отдельные записи)
// Уже отмененные записи пропускаются, поэтому повторный вызов достраивает пару
// Если упала вторая запись, возвращается *domain.PartialWriteError и ставится задача восстановления
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelBooking: source=%s id=%d", req.Source, req.ID)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CancelBooking: validation failed: %v", err)
		return nil, err
	}

	pair, err := uc.loadPair(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := validatePair(pair); err != nil {
		uc.logger.Warn("CancelBooking: %v", err)
		uc.metrics.RecordBookingOperation(operationName, "rejected")
		return nil, err
	}

	reservation := domain.CommittedReservation()
	kind := pairKind(pair)

	// 1. Специализированная запись
	if pair.Room != nil && pair.Room.IsActive() {
		if err := uc.roomBookings.Cancel(ctx, pair.Room.Kind, pair.Room.ID, req.Reason); err != nil {
			uc.logger.Error("CancelBooking: failed to cancel %s room booking id=%d: %v", pair.Room.Kind, pair.Room.ID, err)
			uc.metrics.RecordBookingOperation(operationName, "error")
			return nil, fmt.Errorf("%w: cancel room booking: %v", ErrInternal, err)
		}
		uc.logger.Info("CancelBooking: %s room booking id=%d cancelled", pair.Room.Kind, pair.Room.ID)
	}

	// 2. Зеркальный прием
	if pair.Appointment != nil && pair.Appointment.IsActive() {
		if err := uc.appointments.Cancel(ctx, pair.Appointment.ID, req.Reason); err != nil {
			if pair.Room != nil {
				return nil, uc.partialWrite(ctx, pair, kind, req.Reason, err)
			}
			uc.logger.Error("CancelBooking: failed to cancel appointment id=%d: %v", pair.Appointment.ID, err)
			uc.metrics.RecordBookingOperation(operationName, "error")
			return nil, fmt.Errorf("%w: cancel appointment: %v", ErrInternal, err)
		}
		uc.logger.Info("CancelBooking: appointment id=%d cancelled", pair.Appointment.ID)
	}

	if pair.Appointment == nil {
		uc.logger.Warn("CancelBooking: %s id=%d has no mirrored appointment", req.Source, req.ID)
	}

	if err := reservation.Cancel(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	uc.metrics.RecordBookingOperation(operationName, "success")

	// Состояние после отмены
	updated, err := uc.loadPair(ctx, req)
	if err != nil {
		return nil, err
	}

	ev := events.NewPairEvent(events.TypeBookingCancelled, kind, updated.Appointment, updated.Room)
	if err := uc.publisher.Publish(ctx, ev); err != nil {
		uc.logger.Warn("CancelBooking: failed to publish event for %s id=%d: %v", req.Source, req.ID, err)
	}

	return &Response{Appointment: updated.Appointment, RoomBooking: updated.Room}, nil
}

func (uc *UseCase) loadPair(ctx context.Context, req *Request) (*domain.BookingPair, error) {
	pair, err := uc.pairs.GetPair(ctx, req.Source, req.ID)
	if err != nil {
		if errors.Is(err, bookings.ErrBookingNotFound) {
			uc.logger.Warn("CancelBooking: %s id=%d not found", req.Source, req.ID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("CancelBooking: failed to load %s id=%d: %v", req.Source, req.ID, err)
		return nil, fmt.Errorf("%w: load pair: %v", ErrInternal, err)
	}
	return pair, nil
}

// partialWrite фиксирует рассогласование: задача восстановления, метрика, событие, типизированная ошибка
func (uc *UseCase) partialWrite(ctx context.Context, pair *domain.BookingPair, kind domain.BookingKind, reason string, cause error) error {
	pwErr := &domain.PartialWriteError{
		Operation:     operationName,
		AppointmentID: pair.Appointment.ID,
		RoomBookingID: pair.Room.ID,
		Completed:     recordRoomBooking,
		Failed:        recordAppointment,
		Err:           cause,
	}
	uc.logger.Error("CancelBooking: %v", pwErr)
	uc.metrics.RecordPartialWrite(operationName)
	uc.metrics.RecordBookingOperation(operationName, "partial")

	// Задача пишется вне контекста запроса, чтобы отмена клиента ее не потеряла
	task, err := uc.repairs.Enqueue(context.WithoutCancel(ctx), &domain.RepairTask{
		Action:        domain.RepairCancelAppointment,
		Kind:          kind,
		AppointmentID: pair.Appointment.ID,
		RoomBookingID: pair.Room.ID,
		Reason:        reason,
	})
	if err != nil {
		uc.logger.Error("CancelBooking: failed to enqueue repair for appointment id=%d: %v", pair.Appointment.ID, err)
	} else {
		uc.logger.Warn("CancelBooking: repair task id=%d enqueued for appointment id=%d", task.ID, pair.Appointment.ID)
	}

	room := *pair.Room
	room.Status = domain.StatusCancelled
	ev := events.NewPairEvent(events.TypePartialWrite, kind, pair.Appointment, &room)
	ev.Reason = cause.Error()
	if err := uc.publisher.Publish(ctx, ev); err != nil {
		uc.logger.Warn("CancelBooking: failed to publish partial write event: %v", err)
	}

	return pwErr
}

func pairKind(pair *domain.BookingPair) domain.BookingKind {
	if pair.Room != nil {
		return pair.Room.Kind
	}
	return pair.Appointment.Kind
}
