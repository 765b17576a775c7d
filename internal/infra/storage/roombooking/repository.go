package roombooking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-ClinicBooking/pkg/psqlbuilder"
)

var selectColumns = []string{
	"id",
	"room_id",
	"appointment_id",
	"service_type",
	"service_id",
	"sub_service_id",
	"professional_id",
	"patient_id",
	"booking_date",
	"start_time",
	"end_time",
	"duration_minutes",
	"buffer_minutes",
	"status",
	"amount",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// TableFor возвращает таблицу специализированных бронирований для вида
func TableFor(kind domain.BookingKind) (string, error) {
	switch kind {
	case domain.KindWellness:
		return "wellness_room_bookings", nil
	case domain.KindTreatment:
		return "treatment_room_bookings", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
}

// Repository репозиторий бронирований wellness и treatment кабинетов
// Таблица выбирается по виду бронирования
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований кабинетов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает бронирование кабинета
func (r *Repository) Create(ctx context.Context, b *domain.RoomBooking) (*domain.RoomBooking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	table, err := TableFor(b.Kind)
	if err != nil {
		return nil, err
	}

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"room_id",
			"appointment_id",
			"service_type",
			"service_id",
			"sub_service_id",
			"professional_id",
			"patient_id",
			"booking_date",
			"start_time",
			"end_time",
			"duration_minutes",
			"buffer_minutes",
			"status",
			"amount",
			"notes",
		).
		Values(
			b.RoomID,
			b.AppointmentID,
			b.ServiceType,
			b.ServiceID,
			b.SubServiceID,
			b.ProfessionalID,
			b.PatientID,
			b.Date,
			b.StartTime,
			b.EndTime,
			b.DurationMinutes,
			b.BufferMinutes,
			b.Status,
			b.Amount,
			b.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&b.ID, &createdAt, &updatedAt)
	if err != nil {
		if isExclusionViolation(err) {
			return nil, fmt.Errorf("%w: Create: %v", ErrOverlap, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return b, nil
}

// GetByID получает бронирование кабинета по ID
func (r *Repository) GetByID(ctx context.Context, kind domain.BookingKind, id int64) (*domain.RoomBooking, error) {
	return r.getOne(ctx, kind, "GetByID", squirrel.Eq{"id": id})
}

// GetByAppointmentID получает бронирование кабинета по обратной ссылке на прием
func (r *Repository) GetByAppointmentID(ctx context.Context, kind domain.BookingKind, appointmentID int64) (*domain.RoomBooking, error) {
	return r.getOne(ctx, kind, "GetByAppointmentID", squirrel.Eq{"appointment_id": appointmentID})
}

func (r *Repository) getOne(ctx context.Context, kind domain.BookingKind, op string, where squirrel.Eq) (*domain.RoomBooking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	table, err := TableFor(kind)
	if err != nil {
		return nil, err
	}

	builder := psqlbuilder.Select(selectColumns...).
		From(table).
		Where(where).
		Limit(1)
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	b, err := scanRoomBooking(executor.QueryRowContext(ctx, query, args...), kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan room booking: %v", ErrScanRow, op, err)
	}

	return b, nil
}

// ListActiveByRoom возвращает неотмененные бронирования кабинета на дату
// В транзакции строки блокируются (FOR UPDATE)
func (r *Repository) ListActiveByRoom(ctx context.Context, kind domain.BookingKind, roomID int64, date time.Time) ([]*domain.RoomBooking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	table, err := TableFor(kind)
	if err != nil {
		return nil, err
	}

	builder := psqlbuilder.Select(selectColumns...).
		From(table).
		Where(squirrel.Eq{"room_id": roomID, "booking_date": date}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled}).
		OrderBy("start_time ASC")
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveByRoom - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveByRoom - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings := make([]*domain.RoomBooking, 0)
	for rows.Next() {
		b, err := scanRoomBooking(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("%w: ListActiveByRoom - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActiveByRoom - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

// SetAppointmentID проставляет обратную ссылку на зеркальный прием
func (r *Repository) SetAppointmentID(ctx context.Context, kind domain.BookingKind, id, appointmentID int64) error {
	table, err := TableFor(kind)
	if err != nil {
		return err
	}

	query, args, err := psqlbuilder.Update(table).
		Set("appointment_id", appointmentID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetAppointmentID - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, "SetAppointmentID", query, args)
}

// UpdateSchedule обновляет временные поля, кабинет и услугу (перенос)
func (r *Repository) UpdateSchedule(ctx context.Context, b *domain.RoomBooking) error {
	table, err := TableFor(b.Kind)
	if err != nil {
		return err
	}

	query, args, err := psqlbuilder.Update(table).
		Set("room_id", b.RoomID).
		Set("service_type", b.ServiceType).
		Set("service_id", b.ServiceID).
		Set("sub_service_id", b.SubServiceID).
		Set("professional_id", b.ProfessionalID).
		Set("booking_date", b.Date).
		Set("start_time", b.StartTime).
		Set("end_time", b.EndTime).
		Set("duration_minutes", b.DurationMinutes).
		Set("buffer_minutes", b.BufferMinutes).
		Set("amount", b.Amount).
		Set("notes", b.Notes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": b.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateSchedule - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, "UpdateSchedule", query, args)
}

// Cancel мягко отменяет бронирование кабинета
func (r *Repository) Cancel(ctx context.Context, kind domain.BookingKind, id int64, reason string) error {
	table, err := TableFor(kind)
	if err != nil {
		return err
	}

	query, args, err := psqlbuilder.Update(table).
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, "Cancel", query, args)
}

func (r *Repository) execAffectingOne(ctx context.Context, op, query string, args []interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if isExclusionViolation(err) {
			return fmt.Errorf("%w: %s: %v", ErrOverlap, op, err)
		}
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return ErrRoomBookingNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRoomBooking(row rowScanner, kind domain.BookingKind) (*domain.RoomBooking, error) {
	b := domain.RoomBooking{Kind: kind}
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&b.ID,
		&b.RoomID,
		&b.AppointmentID,
		&b.ServiceType,
		&b.ServiceID,
		&b.SubServiceID,
		&b.ProfessionalID,
		&b.PatientID,
		&b.Date,
		&b.StartTime,
		&b.EndTime,
		&b.DurationMinutes,
		&b.BufferMinutes,
		&b.Status,
		&b.Amount,
		&b.Notes,
		&b.CancellationReason,
		&b.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time
	return &b, nil
}
