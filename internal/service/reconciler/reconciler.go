package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/events"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/roombooking"
)

// Reconciler фоновый воркер, достраивающий пары записей после частичной отмены
type Reconciler struct {
	repairs      RepairQueue
	appointments AppointmentRepository
	roomBookings RoomBookingRepository
	txManager    TransactionManager
	publisher    EventPublisher
	metrics      Metrics
	opts         Options
	now          func() time.Time
	logger       Logger
}

// New создает воркер восстановления
func New(
	repairs RepairQueue,
	appointments AppointmentRepository,
	roomBookings RoomBookingRepository,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics Metrics,
	opts Options,
	logger Logger,
) *Reconciler {
	return &Reconciler{
		repairs:      repairs,
		appointments: appointments,
		roomBookings: roomBookings,
		txManager:    txManager,
		publisher:    publisher,
		metrics:      metrics,
		opts:         opts,
		now:          time.Now,
		logger:       logger,
	}
}

// Run обрабатывает очередь по тикеру до отмены контекста
func (r *Reconciler) Run(ctx context.Context) {
	r.logger.Info("Reconciler: started (interval=%s, batch=%d)", r.opts.Interval, r.opts.BatchSize)

	ticker := time.NewTicker(r.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Reconciler: stopped")
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				r.logger.Error("Reconciler: pass failed: %v", err)
			}
		}
	}
}

// RunOnce обрабатывает до BatchSize задач и возвращает число обработанных
// Каждая задача забирается и выполняется в своей транзакции (SKIP LOCKED в Postgres)
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	processed := 0

	for processed < r.opts.BatchSize {
		var task *domain.RepairTask

		err := r.txManager.Do(ctx, func(txCtx context.Context) error {
			tasks, err := r.repairs.ClaimDue(txCtx, r.now(), 1)
			if err != nil {
				return fmt.Errorf("claim repair tasks: %w", err)
			}
			if len(tasks) == 0 {
				return nil
			}
			task = tasks[0]

			if err := r.apply(txCtx, task); err != nil {
				return err
			}
			return r.repairs.MarkDone(txCtx, task.ID)
		})

		if task == nil {
			return processed, err
		}
		processed++

		if err != nil {
			if markErr := r.markFailed(ctx, task, err); markErr != nil {
				return processed, markErr
			}
			continue
		}

		r.metrics.RecordRepair(resultSuccess)
		r.logger.Info("Reconciler: task id=%d (%s) completed", task.ID, task.Action)
		r.publishCompleted(ctx, task)
	}

	return processed, nil
}

// apply выполняет недостающую отмену; уже отмененная или удаленная запись считается восстановленной
func (r *Reconciler) apply(ctx context.Context, task *domain.RepairTask) error {
	switch task.Action {
	case domain.RepairCancelAppointment:
		appt, err := r.appointments.GetByID(ctx, task.AppointmentID)
		if err != nil {
			if errors.Is(err, appointment.ErrAppointmentNotFound) {
				r.logger.Warn("Reconciler: appointment id=%d is gone, nothing to repair", task.AppointmentID)
				return nil
			}
			return fmt.Errorf("%w: load appointment id=%d: %v", ErrRepairFailed, task.AppointmentID, err)
		}
		if !appt.IsActive() {
			return nil
		}
		if err := r.appointments.Cancel(ctx, appt.ID, task.Reason); err != nil {
			return fmt.Errorf("%w: cancel appointment id=%d: %v", ErrRepairFailed, appt.ID, err)
		}
		return nil

	case domain.RepairCancelRoomBooking:
		room, err := r.roomBookings.GetByID(ctx, task.Kind, task.RoomBookingID)
		if err != nil {
			if errors.Is(err, roombooking.ErrRoomBookingNotFound) {
				r.logger.Warn("Reconciler: %s room booking id=%d is gone, nothing to repair", task.Kind, task.RoomBookingID)
				return nil
			}
			return fmt.Errorf("%w: load room booking id=%d: %v", ErrRepairFailed, task.RoomBookingID, err)
		}
		if !room.IsActive() {
			return nil
		}
		if err := r.roomBookings.Cancel(ctx, task.Kind, room.ID, task.Reason); err != nil {
			return fmt.Errorf("%w: cancel room booking id=%d: %v", ErrRepairFailed, room.ID, err)
		}
		return nil

	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, task.Action)
	}
}

// markFailed откладывает задачу с линейной задержкой или закрывает ее после MaxAttempts
func (r *Reconciler) markFailed(ctx context.Context, task *domain.RepairTask, cause error) error {
	attempt := task.Attempts + 1
	giveUp := attempt >= r.opts.MaxAttempts || errors.Is(cause, ErrUnknownAction)
	next := r.now().Add(time.Duration(attempt) * r.opts.Backoff)

	if err := r.repairs.MarkFailed(ctx, task.ID, cause.Error(), next, giveUp); err != nil {
		r.logger.Error("Reconciler: failed to mark task id=%d as failed: %v", task.ID, err)
		return fmt.Errorf("mark task id=%d failed: %w", task.ID, err)
	}

	if giveUp {
		r.metrics.RecordRepair(resultGaveUp)
		r.logger.Error("Reconciler: giving up on task id=%d after %d attempts: %v", task.ID, attempt, cause)
		return nil
	}

	r.metrics.RecordRepair(resultFailed)
	r.logger.Warn("Reconciler: task id=%d attempt %d failed, retry at %s: %v",
		task.ID, attempt, next.Format(time.RFC3339), cause)
	return nil
}

func (r *Reconciler) publishCompleted(ctx context.Context, task *domain.RepairTask) {
	var (
		appt *domain.Appointment
		room *domain.RoomBooking
	)
	if task.AppointmentID > 0 {
		if a, err := r.appointments.GetByID(ctx, task.AppointmentID); err == nil {
			appt = a
		}
	}
	if task.RoomBookingID > 0 {
		if b, err := r.roomBookings.GetByID(ctx, task.Kind, task.RoomBookingID); err == nil {
			room = b
		}
	}

	ev := events.NewPairEvent(events.TypeRepairCompleted, task.Kind, appt, room)
	ev.Reason = string(task.Action)
	if err := r.publisher.Publish(ctx, ev); err != nil {
		r.logger.Warn("Reconciler: failed to publish repair event for task id=%d: %v", task.ID, err)
	}
}
