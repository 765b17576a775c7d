package resource

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
	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

// Repository справочник специалистов и кабинетов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория ресурсов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetResource возвращает специалиста или кабинет в виде domain.Resource
func (r *Repository) GetResource(ctx context.Context, ref domain.ResourceRef) (*domain.Resource, error) {
	switch {
	case ref.Kind == domain.ResourceProfessional:
		p, err := r.GetProfessional(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return domain.ResourceFromProfessional(p), nil
	case ref.Kind.IsRoom():
		room, err := r.GetRoom(ctx, ref.Kind, ref.ID)
		if err != nil {
			return nil, err
		}
		return domain.ResourceFromRoom(room), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, ref.Kind)
	}
}

// GetProfessional получает специалиста вместе с недельным расписанием
func (r *Repository) GetProfessional(ctx context.Context, id int64) (*domain.Professional, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "active").
		From("professionals").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetProfessional - build select query: %v", ErrBuildQuery, err)
	}

	var p domain.Professional
	err = executor.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.Name, &p.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrResourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetProfessional - scan professional: %v", ErrScanRow, err)
	}

	schedule, err := r.getWorkingHours(ctx, executor, id)
	if err != nil {
		return nil, err
	}
	p.Schedule = schedule

	return &p, nil
}

// getWorkingHours читает расписание специалиста; дни без строки остаются не настроенными
func (r *Repository) getWorkingHours(ctx context.Context, executor DBExecutor, professionalID int64) (domain.WeeklySchedule, error) {
	query, args, err := psqlbuilder.Select("weekday", "is_open", "open_time", "close_time").
		From("professional_working_hours").
		Where(squirrel.Eq{"professional_id": professionalID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getWorkingHours - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getWorkingHours - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	schedule := make(domain.WeeklySchedule)
	for rows.Next() {
		var (
			weekday   int
			day       domain.DaySchedule
			openTime  types.TimeString
			closeTime types.TimeString
		)
		if err := rows.Scan(&weekday, &day.IsOpen, &openTime, &closeTime); err != nil {
			return nil, fmt.Errorf("%w: getWorkingHours - scan row: %v", ErrScanRow, err)
		}
		day.OpenTime = openTime
		day.CloseTime = closeTime
		schedule[time.Weekday(weekday)] = day
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getWorkingHours - rows error: %v", ErrScanRow, err)
	}

	return schedule, nil
}

// GetRoom получает кабинет указанного вида
func (r *Repository) GetRoom(ctx context.Context, kind domain.ResourceKind, id int64) (*domain.Room, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "kind", "name", "active", "sort_order").
		From("rooms").
		Where(squirrel.Eq{"id": id, "kind": kind}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetRoom - build select query: %v", ErrBuildQuery, err)
	}

	var room domain.Room
	err = executor.QueryRowContext(ctx, query, args...).Scan(&room.ID, &room.Kind, &room.Name, &room.Active, &room.SortOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrResourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetRoom - scan room: %v", ErrScanRow, err)
	}

	return &room, nil
}

// ListRooms возвращает активные кабинеты вида в порядке first-fit (sort_order, id)
func (r *Repository) ListRooms(ctx context.Context, kind domain.ResourceKind) ([]*domain.Room, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "kind", "name", "active", "sort_order").
		From("rooms").
		Where(squirrel.Eq{"kind": kind, "active": true}).
		OrderBy("sort_order ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListRooms - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListRooms - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	rooms := make([]*domain.Room, 0)
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(&room.ID, &room.Kind, &room.Name, &room.Active, &room.SortOrder); err != nil {
			return nil, fmt.Errorf("%w: ListRooms - scan row: %v", ErrScanRow, err)
		}
		rooms = append(rooms, &room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListRooms - rows error: %v", ErrScanRow, err)
	}

	return rooms, nil
}
