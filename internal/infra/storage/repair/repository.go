package repair

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-ClinicBooking/pkg/psqlbuilder"
)

const table = "booking_repairs"

// Repository очередь задач восстановления зеркальных пар
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория задач восстановления
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Enqueue ставит задачу в очередь
func (r *Repository) Enqueue(ctx context.Context, task *domain.RepairTask) (*domain.RepairTask, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if task.NextAttemptAt.IsZero() {
		task.NextAttemptAt = time.Now()
	}

	query, args, err := psqlbuilder.Insert(table).
		Columns("action", "kind", "appointment_id", "room_booking_id", "reason", "attempts", "next_attempt_at").
		Values(task.Action, task.Kind, task.AppointmentID, task.RoomBookingID, task.Reason, task.Attempts, task.NextAttemptAt).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Enqueue - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&task.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Enqueue - execute insert: %v", ErrExecQuery, err)
	}

	task.CreatedAt = createdAt.Time
	task.UpdatedAt = updatedAt.Time
	return task, nil
}

// ClaimDue возвращает незавершенные задачи, срок которых наступил
// В транзакции строки блокируются с SKIP LOCKED, чтобы несколько воркеров не брали одну задачу
func (r *Repository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*domain.RepairTask, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(
		"id", "action", "kind", "appointment_id", "room_booking_id", "reason",
		"attempts", "next_attempt_at", "last_error", "done", "created_at", "updated_at",
	).
		From(table).
		Where(squirrel.Eq{"done": false}).
		Where(squirrel.LtOrEq{"next_attempt_at": now}).
		OrderBy("next_attempt_at ASC", "id ASC").
		Limit(uint64(limit))
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE SKIP LOCKED")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ClaimDue - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ClaimDue - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	tasks := make([]*domain.RepairTask, 0)
	for rows.Next() {
		var t domain.RepairTask
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(
			&t.ID, &t.Action, &t.Kind, &t.AppointmentID, &t.RoomBookingID, &t.Reason,
			&t.Attempts, &t.NextAttemptAt, &t.LastError, &t.Done, &createdAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: ClaimDue - scan row: %v", ErrScanRow, err)
		}
		t.CreatedAt = createdAt.Time
		t.UpdatedAt = updatedAt.Time
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ClaimDue - rows error: %v", ErrScanRow, err)
	}

	return tasks, nil
}

// MarkDone помечает задачу выполненной
func (r *Repository) MarkDone(ctx context.Context, id int64) error {
	query, args, err := psqlbuilder.Update(table).
		Set("done", true).
		Set("attempts", squirrel.Expr("attempts + 1")).
		Set("last_error", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkDone - build update query: %v", ErrBuildQuery, err)
	}
	return r.execAffectingOne(ctx, "MarkDone", query, args)
}

// MarkFailed увеличивает счетчик попыток и откладывает задачу до nextAttemptAt
// При giveUp задача закрывается без успешного восстановления
func (r *Repository) MarkFailed(ctx context.Context, id int64, lastError string, nextAttemptAt time.Time, giveUp bool) error {
	query, args, err := psqlbuilder.Update(table).
		Set("attempts", squirrel.Expr("attempts + 1")).
		Set("last_error", lastError).
		Set("next_attempt_at", nextAttemptAt).
		Set("done", giveUp).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkFailed - build update query: %v", ErrBuildQuery, err)
	}
	return r.execAffectingOne(ctx, "MarkFailed", query, args)
}

func (r *Repository) execAffectingOne(ctx context.Context, op, query string, args []interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
