package get_room_availability

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/availability"
)

// UseCase use case для проверки всех кабинетов вида на интервал
type UseCase struct {
	rooms    RoomRepository
	resolver AvailabilityResolver
	logger   Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(rooms RoomRepository, resolver AvailabilityResolver, logger Logger) *UseCase {
	return &UseCase{
		rooms:    rooms,
		resolver: resolver,
		logger:   logger,
	}
}

// Execute возвращает доступность каждого активного кабинета в порядке сортировки
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetRoomAvailability: kind=%s, date=%s, %s-%s",
		req.RoomKind, req.Date.Format(domain.DateFormat), req.StartTime, req.EndTime)

	// 1. Валидация входных данных
	duration, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("GetRoomAvailability: validation failed: %v", err)
		return nil, err
	}

	// 2. Кабинеты вида
	rooms, err := uc.rooms.ListRooms(ctx, req.RoomKind)
	if err != nil {
		uc.logger.Error("GetRoomAvailability: failed to list rooms kind=%s: %v", req.RoomKind, err)
		return nil, fmt.Errorf("%w: %w: list rooms: %v", ErrInternal, domain.ErrLookupFailed, err)
	}

	active := make([]*domain.Room, 0, len(rooms))
	for _, room := range rooms {
		if room.Active {
			active = append(active, room)
		}
	}

	// 3. Проверка каждого кабинета
	candidate := availability.Candidate{
		Start:           req.StartTime,
		DurationMinutes: duration,
		BufferAfter:     req.BufferMinutes,
	}
	result := make([]RoomAvailability, len(active))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelChecks)
	for i, room := range active {
		g.Go(func() error {
			res, err := uc.resolver.IsAvailable(gctx, room.Ref(), req.Date, candidate, req.ExcludeBookingID)
			if err != nil {
				return err
			}
			result[i] = RoomAvailability{
				RoomID:      room.ID,
				Name:        room.Name,
				SortOrder:   room.SortOrder,
				IsAvailable: res.Available,
				Reason:      string(res.Reason),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, domain.ErrLookupFailed) {
			return nil, err
		}
		uc.logger.Error("GetRoomAvailability: availability check failed: %v", err)
		return nil, fmt.Errorf("%w: check availability: %v", ErrInternal, err)
	}

	uc.logger.Info("GetRoomAvailability: checked %d rooms kind=%s", len(result), req.RoomKind)

	return &Response{
		RoomKind:  req.RoomKind,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Rooms:     result,
	}, nil
}
