package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/roombooking"
	"github.com/m04kA/SMC-ClinicBooking/pkg/ptr"
)

// RoomBookings бронирования кабинетов в памяти, повторяют поведение roombooking.Repository
type RoomBookings struct {
	s *Store
}

func (r *RoomBookings) table(kind domain.BookingKind) (map[int64]*domain.RoomBooking, error) {
	if _, err := roombooking.TableFor(kind); err != nil {
		return nil, err
	}
	return r.s.roomBookings[kind], nil
}

func (r *RoomBookings) Create(ctx context.Context, b *domain.RoomBooking) (*domain.RoomBooking, error) {
	err := r.s.write(ctx, func() error {
		table, err := r.table(b.Kind)
		if err != nil {
			return err
		}
		if err := checkRoomOverlap(table, b); err != nil {
			return err
		}
		r.s.nextRoomBookingID[b.Kind]++
		now := r.s.now()
		b.ID = r.s.nextRoomBookingID[b.Kind]
		b.CreatedAt = now
		b.UpdatedAt = now
		stored := *b
		table[b.ID] = &stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *RoomBookings) GetByID(ctx context.Context, kind domain.BookingKind, id int64) (*domain.RoomBooking, error) {
	return r.find(kind, func(b *domain.RoomBooking) bool { return b.ID == id })
}

func (r *RoomBookings) GetByAppointmentID(ctx context.Context, kind domain.BookingKind, appointmentID int64) (*domain.RoomBooking, error) {
	return r.find(kind, func(b *domain.RoomBooking) bool {
		return b.AppointmentID != nil && *b.AppointmentID == appointmentID
	})
}

func (r *RoomBookings) find(kind domain.BookingKind, match func(b *domain.RoomBooking) bool) (*domain.RoomBooking, error) {
	var (
		result *domain.RoomBooking
		err    error
	)
	r.s.read(func() {
		table, tErr := r.table(kind)
		if tErr != nil {
			err = tErr
			return
		}
		for _, b := range table {
			if match(b) {
				copied := *b
				result = &copied
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, roombooking.ErrRoomBookingNotFound
	}
	return result, nil
}

func (r *RoomBookings) ListActiveByRoom(ctx context.Context, kind domain.BookingKind, roomID int64, date time.Time) ([]*domain.RoomBooking, error) {
	var err error
	result := make([]*domain.RoomBooking, 0)
	r.s.read(func() {
		table, tErr := r.table(kind)
		if tErr != nil {
			err = tErr
			return
		}
		for _, b := range table {
			if b.RoomID != roomID || !b.IsActive() || !sameDay(b.Date, date) {
				continue
			}
			copied := *b
			result = append(result, &copied)
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.IsBefore(result[j].StartTime) })
	return result, nil
}

func (r *RoomBookings) SetAppointmentID(ctx context.Context, kind domain.BookingKind, id, appointmentID int64) error {
	return r.update(ctx, kind, id, func(stored *domain.RoomBooking) error {
		stored.AppointmentID = ptr.Ptr(appointmentID)
		return nil
	})
}

func (r *RoomBookings) UpdateSchedule(ctx context.Context, b *domain.RoomBooking) error {
	return r.update(ctx, b.Kind, b.ID, func(stored *domain.RoomBooking) error {
		if err := checkRoomOverlap(r.s.roomBookings[b.Kind], b); err != nil {
			return err
		}
		stored.RoomID = b.RoomID
		stored.ServiceType = b.ServiceType
		stored.ServiceID = b.ServiceID
		stored.SubServiceID = b.SubServiceID
		stored.ProfessionalID = b.ProfessionalID
		stored.Date = b.Date
		stored.StartTime = b.StartTime
		stored.EndTime = b.EndTime
		stored.DurationMinutes = b.DurationMinutes
		stored.BufferMinutes = b.BufferMinutes
		stored.Amount = b.Amount
		stored.Notes = b.Notes
		return nil
	})
}

func (r *RoomBookings) Cancel(ctx context.Context, kind domain.BookingKind, id int64, reason string) error {
	return r.update(ctx, kind, id, func(stored *domain.RoomBooking) error {
		stored.Status = domain.StatusCancelled
		stored.CancellationReason = ptr.Ptr(reason)
		stored.CancelledAt = ptr.Ptr(r.s.now())
		return nil
	})
}

func (r *RoomBookings) update(ctx context.Context, kind domain.BookingKind, id int64, fn func(stored *domain.RoomBooking) error) error {
	return r.s.write(ctx, func() error {
		table, err := r.table(kind)
		if err != nil {
			return err
		}
		stored, ok := table[id]
		if !ok {
			return roombooking.ErrRoomBookingNotFound
		}
		if err := fn(stored); err != nil {
			return err
		}
		stored.UpdatedAt = r.s.now()
		return nil
	})
}

// checkRoomOverlap повторяет EXCLUDE-ограничение: кабинет, дата и [start, end + buffer)
func checkRoomOverlap(table map[int64]*domain.RoomBooking, candidate *domain.RoomBooking) error {
	if !candidate.IsActive() {
		return nil
	}
	span, err := domain.IntervalBetween(candidate.StartTime, candidate.EndTime)
	if err != nil {
		return fmt.Errorf("%w: %v", roombooking.ErrExecQuery, err)
	}
	expanded := domain.Expand(span, 0, candidate.BufferMinutes)

	for _, existing := range table {
		if existing.ID == candidate.ID || existing.RoomID != candidate.RoomID ||
			!existing.IsActive() || !sameDay(existing.Date, candidate.Date) {
			continue
		}
		other, err := domain.IntervalBetween(existing.StartTime, existing.EndTime)
		if err != nil {
			continue
		}
		if domain.Overlaps(expanded, domain.Expand(other, 0, existing.BufferMinutes)) {
			return fmt.Errorf("%w: room id=%d with booking id=%d", roombooking.ErrOverlap, candidate.RoomID, existing.ID)
		}
	}
	return nil
}
