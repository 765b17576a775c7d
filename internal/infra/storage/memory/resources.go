package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/resource"
)

// Resources справочник специалистов и кабинетов в памяти
type Resources struct {
	s *Store
}

func (r *Resources) GetResource(ctx context.Context, ref domain.ResourceRef) (*domain.Resource, error) {
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
		return nil, fmt.Errorf("%w: %s", resource.ErrUnsupportedKind, ref.Kind)
	}
}

func (r *Resources) GetProfessional(ctx context.Context, id int64) (*domain.Professional, error) {
	var result *domain.Professional
	r.s.read(func() {
		if p, ok := r.s.professionals[id]; ok {
			copied := *p
			result = &copied
		}
	})
	if result == nil {
		return nil, resource.ErrResourceNotFound
	}
	return result, nil
}

func (r *Resources) GetRoom(ctx context.Context, kind domain.ResourceKind, id int64) (*domain.Room, error) {
	var result *domain.Room
	r.s.read(func() {
		if room, ok := r.s.rooms[id]; ok && room.Kind == kind {
			copied := *room
			result = &copied
		}
	})
	if result == nil {
		return nil, resource.ErrResourceNotFound
	}
	return result, nil
}

func (r *Resources) ListRooms(ctx context.Context, kind domain.ResourceKind) ([]*domain.Room, error) {
	rooms := make([]*domain.Room, 0)
	r.s.read(func() {
		for _, room := range r.s.rooms {
			if room.Kind == kind && room.Active {
				copied := *room
				rooms = append(rooms, &copied)
			}
		}
	})
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].SortOrder != rooms[j].SortOrder {
			return rooms[i].SortOrder < rooms[j].SortOrder
		}
		return rooms[i].ID < rooms[j].ID
	})
	return rooms, nil
}
